package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"benefits-rag/internal/chunker"
	"benefits-rag/internal/config"
	"benefits-rag/internal/embedding"
	"benefits-rag/internal/helper"
	"benefits-rag/internal/index"
	"benefits-rag/internal/index/chromemdb"
	"benefits-rag/internal/index/memory"
	"benefits-rag/internal/index/pgvector"
	"benefits-rag/internal/llmservice"
	"benefits-rag/internal/models"
	"benefits-rag/internal/rag"
	"benefits-rag/internal/retriever"
	"benefits-rag/internal/synthesizer"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a UTF-8 text file to index")
	text := flag.String("text", "", "Literal text to index")
	source := flag.String("source", "", "Source metadata for the indexed document")
	query := flag.String("query", "", "Question to answer from the indexed documents")
	deleteIDs := flag.String("delete", "", "Comma-separated document ids to delete")
	stats := flag.Bool("stats", false, "Print index statistics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	pipeline, cleanup, err := buildPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}
	defer cleanup()

	ctx := context.Background()

	switch {
	case *filePath != "":
		data, err := os.ReadFile(*filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading document file")
		}
		indexText(ctx, pipeline, string(data), *filePath, *source)
	case *text != "":
		indexText(ctx, pipeline, *text, "", *source)
	case *query != "":
		runQuery(ctx, pipeline, models.QueryRequest{
			Question:   *query,
			MaxResults: cfg.Retrieval.MaxResults,
			Threshold:  cfg.Retrieval.Threshold,
		})
	case *deleteIDs != "":
		result := pipeline.DeleteDocumentsBatch(ctx, strings.Split(*deleteIDs, ","))
		helper.PrettyPrint(result)
	case *stats:
		helper.PrettyPrint(pipeline.Stats(ctx))
	default:
		log.Fatal().Msg("Please provide one of -file, -text, -query, -delete or -stats")
	}
}

func buildPipeline(cfg *config.Config) (*rag.RAG, func(), error) {
	embedProvider, err := llmservice.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, nil, err
	}
	embedder := embedding.NewService(embedProvider, cfg.Embedding.Dimension, cfg.Embedding.MaxChars, cfg.Embedding.Workers, cfg.EmbedLLM.Timeout())

	store, cleanup, err := newStore(cfg, embedder)
	if err != nil {
		return nil, nil, err
	}

	chk, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.MaxChunksPerDocument)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	model, err := llmservice.NewLLM(&cfg.InferenceLLM)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	pipeline := rag.NewRAG(
		retriever.New(chk, embedder, store),
		synthesizer.New(model, cfg.InferenceLLM.Timeout()),
	)
	return pipeline, cleanup, nil
}

func newStore(cfg *config.Config, embedder *embedding.Service) (index.Store, func(), error) {
	switch cfg.Store.Type {
	case "chromem":
		if !cfg.Store.Chromem.InMemory {
			if err := helper.CreateFolder(cfg.Store.Chromem.Path); err != nil {
				return nil, nil, err
			}
		}
		store, err := chromemdb.NewStore(embedder, cfg.Store.Chromem.Path, cfg.Store.Chromem.Collection, cfg.Store.Chromem.InMemory)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "pgvector":
		store, err := pgvector.NewStore(embedder, cfg.Store.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(context.Background()); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return memory.NewStore(embedder), func() {}, nil
	}
}

func indexText(ctx context.Context, pipeline *rag.RAG, content, path, source string) {
	metadata := models.Metadata{}
	if path != "" {
		metadata[models.MetaTitle] = path
	}
	if source != "" {
		metadata[models.MetaSource] = source
	}

	id, err := pipeline.IndexDocument(ctx, content, metadata)
	if err != nil {
		log.Fatal().Err(err).Msg("Error indexing document")
	}
	log.Info().Msgf("Indexed document %s", id)
}

func runQuery(ctx context.Context, pipeline *rag.RAG, request models.QueryRequest) {
	response := pipeline.ProcessQuery(ctx, request)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", request.Question)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, doc := range response.Sources {
		fmt.Printf("[%.3f] %s (%s)\n", doc.Score, doc.ID, doc.MetadataString(models.MetaSource, "unknown"))
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Answer)

	log.Info().Msgf("Confidence: %.3f, processed in %s", response.Confidence, response.ProcessingTime)
}
