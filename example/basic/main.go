package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/siherrmann/manualrag"
	"github.com/siherrmann/manualrag/core/embedding"
	"github.com/siherrmann/manualrag/core/llm"
	"github.com/siherrmann/manualrag/core/retrieval"
	"github.com/siherrmann/manualrag/core/store"
	"github.com/siherrmann/manualrag/database"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
	loadSql "github.com/siherrmann/manualrag/sql"
)

var manualPassages = []struct {
	title    string
	subchunk int
	content  string
}{
	{"Ajuste de asientos", 0, "El asiento del conductor se desplaza hacia delante o hacia atrás tirando de la palanca situada bajo la parte delantera del asiento. Suelte la palanca y compruebe que el asiento ha quedado encastrado."},
	{"Ajuste de asientos", 1, "La altura del asiento se regula bombeando la palanca lateral hacia arriba o hacia abajo. La inclinación del respaldo se ajusta girando la rueda del lateral interior."},
	{"Reposacabezas", 0, "Ajuste el reposacabezas de modo que su borde superior quede a la altura de la parte superior de la cabeza. Pulse el botón de desbloqueo para bajarlo."},
	{"Sistema de luces", 0, "Gire el mando de luces a la posición AUTO para que las luces de cruce se enciendan automáticamente en condiciones de poca luminosidad."},
	{"Climatización", 0, "Pulse la tecla AUTO para que el climatizador regule automáticamente la temperatura, el caudal y la distribución del aire."},
	{"Airbags", 0, "El vehículo dispone de airbags frontales, laterales y de cortina. No coloque objetos sobre las tapas de los airbags."},
}

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	ctx := context.Background()
	logger := helper.NewPrettyLogger(os.Stdout, slog.LevelInfo)

	db, err := helper.NewDatabase("example", dbConfig, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := loadSql.Init(db.Instance); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	passages, err := database.NewPassagesDBHandler(db, helper.DefaultLocalEmbeddingDim, false)
	if err != nil {
		log.Fatalf("Failed to create passages handler: %v", err)
	}

	embed, err := embedding.DefaultEmbedder(embedding.DefaultLocalModel, "")
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	fmt.Println("Seeding manual passages...")
	for _, p := range manualPassages {
		vector, err := embed(ctx, p.title+"\n"+p.content)
		if err != nil {
			log.Fatalf("Failed to embed passage: %v", err)
		}
		passage := &model.Passage{
			Title:         p.title,
			Content:       p.content,
			SubchunkIndex: p.subchunk,
			Embedding:     vector,
		}
		if err := passages.InsertPassage(ctx, passage); err != nil {
			log.Fatalf("Failed to insert passage: %v", err)
		}
	}

	query := "¿Cómo se ajustan los asientos?"
	fmt.Printf("\nQuerying: %s\n", query)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		// Without a language model only the retrieval stage can run.
		config := model.DefaultPipelineConfig()
		passageStore := store.NewStore(passages, config.StoreTimeout, logger)
		retriever := retrieval.NewRetriever(embedding.NewClient(embed, config.EmbeddingTimeout, logger), passageStore, config.TopK, logger)

		chunks := retriever.Retrieve(ctx, query, config.TopK)
		fmt.Printf("\nFound %d passages:\n", len(chunks))
		for i, chunk := range chunks {
			fmt.Printf("\n--- Result %d ---\n", i+1)
			fmt.Printf("Similarity: %.4f\n", chunk.Similarity)
			fmt.Printf("Title: %s\n", chunk.Title)
			fmt.Printf("Content: %s\n", chunk.Content)
		}
		fmt.Println("\nSet OPENAI_API_KEY to also generate and evaluate an answer.")
		return
	}

	assistant, err := manualrag.NewAssistant(ctx, manualrag.Dependencies{
		DB:        db,
		Passages:  passages,
		Embed:     embed,
		Completer: llm.NewOpenAICompleter(llm.NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"))),
		Logger:    logger,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}

	result := assistant.ProcessQuery(ctx, query)

	fmt.Printf("\n%s\n", result.Answer.Text)
	fmt.Printf("\nConfidence: %.2f\n", result.Answer.Confidence)
	fmt.Printf("Quality: %s/10\n", result.QualityScore)
	for i, source := range result.Answer.Sources {
		fmt.Printf("Source %d: %s (%.4f)\n", i+1, source.Title, source.Similarity)
	}

	fmt.Println("\nBasic example completed successfully!")
}
