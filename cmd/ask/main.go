package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/siherrmann/manualrag"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
)

func main() {
	_ = godotenv.Load()

	titleSearch := flag.String("title", "", "search passages by title instead of asking")
	limit := flag.Int("limit", 10, "maximum number of title search results")
	showChunks := flag.Bool("chunks", false, "print the retrieved passages")
	asJSON := flag.Bool("json", false, "print results as JSON")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	config, err := helper.NewConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := helper.NewPrettyLogger(os.Stderr, level)

	ctx := context.Background()
	assistant, err := manualrag.New(ctx, config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing pipeline: %v\n", err)
		os.Exit(1)
	}
	defer assistant.Close()

	if *titleSearch != "" {
		chunks := assistant.SearchByTitle(ctx, strings.TrimSpace(*titleSearch), *limit)
		if *asJSON {
			printJSON(chunks)
			return
		}
		printChunks(chunks)
		return
	}

	if query := strings.TrimSpace(strings.Join(flag.Args(), " ")); query != "" {
		answer(ctx, assistant, query, *showChunks, *asJSON)
		return
	}

	fmt.Println("Escribe tu consulta sobre el manual. Comandos: salud, estadisticas, salir")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "salir", "exit", "quit":
			return
		case "salud":
			printJSON(assistant.HealthCheck(ctx))
		case "estadisticas":
			stats := assistant.CorpusStatistics(ctx)
			if stats == nil {
				fmt.Println("Estadísticas no disponibles")
				continue
			}
			printJSON(stats)
		default:
			answer(ctx, assistant, line, *showChunks, *asJSON)
		}
	}
}

func answer(ctx context.Context, assistant *manualrag.Assistant, query string, showChunks bool, asJSON bool) {
	result := assistant.ProcessQuery(ctx, query)
	if asJSON {
		printJSON(result)
		return
	}

	fmt.Printf("\n%s\n\n", result.Answer.Text)
	fmt.Printf("Confianza: %.2f | Calidad: %s/10 | Fuente: %s | %s\n",
		result.Answer.Confidence, result.QualityScore, result.Source, result.FormattedTimestamp())

	for i, source := range result.Answer.Sources {
		fmt.Printf("  [%d] %s (similitud %.3f, sección %d)\n", i+1, source.Title, source.Similarity, source.SubchunkIndex)
	}

	if showChunks {
		printChunks(result.Chunks)
	}
}

func printChunks(chunks []*model.RetrievedChunk) {
	if len(chunks) == 0 {
		fmt.Println("Sin resultados")
		return
	}
	for _, chunk := range chunks {
		fmt.Printf("\n--- #%d %s ---\n%s\n", chunk.ChunkID, chunk.Title, chunk.Content)
	}
}

func printJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
	}
}
