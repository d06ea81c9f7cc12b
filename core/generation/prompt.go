package generation

import (
	"fmt"
	"strings"

	"github.com/siherrmann/manualrag/model"
)

// FallbackText is returned when no passage was retrieved for a query.
const FallbackText = "Lo siento, no encontré información relevante en el manual para responder tu consulta. ¿Podrías reformular tu pregunta o ser más específico?"

const systemPrompt = "Eres un asistente técnico que responde preguntas sobre el manual oficial del vehículo. " +
	"Contesta solo con la información del manual que se te entrega y, si no basta para responder, dilo de forma explícita. " +
	"Usa un tono profesional y cercano."

const answerFormatRules = `INSTRUCCIONES DE FORMATO Y CONTENIDO:
1. Usa únicamente la información del manual incluida arriba.
2. Organiza la respuesta para que sea fácil de leer:
   - Escribe cada paso numerado en su propia línea.
   - Usa **negrita** para los títulos de cada sección.
   - Deja una línea en blanco entre párrafos.
3. En los procedimientos, numera los pasos principales (1., 2., 3.) y usa guiones (-) para los sub-pasos.
4. Agrupa el contenido en secciones: pasos principales, condiciones importantes, precauciones o advertencias e información adicional.
5. Si la información del manual no es suficiente, indícalo claramente al final.

EJEMPLO DE FORMATO:

**Nombre de la función**

**Pasos principales:**

1. **Primer paso**
   - Detalle del paso

2. **Segundo paso**
   - Detalle del paso

**Condiciones importantes:**
- Condición

**Precauciones:**
⚠️ Advertencia`

// ContextBlocks renders one numbered block per chunk, in chunk order.
// The section line is only present for sub-sections.
func ContextBlocks(chunks []*model.RetrievedChunk) []string {
	blocks := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		var b strings.Builder
		fmt.Fprintf(&b, "INFORMACIÓN %d:\n", i+1)
		fmt.Fprintf(&b, "Título: %s\n", chunk.Title)
		if chunk.SubchunkIndex > 0 {
			fmt.Fprintf(&b, "Sección: %d\n", chunk.SubchunkIndex)
		}
		fmt.Fprintf(&b, "Contenido: %s\n", chunk.Content)
		blocks = append(blocks, b.String())
	}
	return blocks
}

// UserPrompt combines the context blocks, the query and the formatting rules.
func UserPrompt(query string, blocks []string) string {
	var b strings.Builder
	b.WriteString("Responde a la consulta del usuario apoyándote EXCLUSIVAMENTE en la siguiente información del manual oficial.\n\n")
	b.WriteString("INFORMACIÓN DEL MANUAL:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nCONSULTA DEL USUARIO:\n")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(answerFormatRules)
	b.WriteString("\n\nRESPUESTA:")
	return b.String()
}
