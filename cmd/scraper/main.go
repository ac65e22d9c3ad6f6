package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"singapore-family-venues-scraper/internal/config"
	"singapore-family-venues-scraper/internal/models"
	"singapore-family-venues-scraper/internal/services"
)

var (
	configPath  string
	outputPath  string
	imagesDir   string
	counterFile string
	s3Bucket    string
	skipRender  bool
	modelName   string
)

var rootCmd = &cobra.Command{
	Use:   "scraper <url>",
	Short: "Extract family venue and event listings from a web page",
	Long: `Renders the given page, discovers content blocks, synthesizes structured
listings with an LLM and writes them as a JSON artifact. Listing IDs are
assigned from a file-persisted counter so repeated runs never reuse an ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output JSON path (default listings.json)")
	rootCmd.Flags().StringVar(&imagesDir, "images-dir", "", "download listing images into this directory")
	rootCmd.Flags().StringVar(&counterFile, "counter-file", "", "path of the persistent listing ID counter")
	rootCmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "publish the artifact to this S3 bucket")
	rootCmd.Flags().BoolVar(&skipRender, "skip-render", false, "fetch with plain HTTP instead of a headless browser")
	rootCmd.Flags().StringVar(&modelName, "model", "", "OpenAI model to use")
}

func run(ctx context.Context, pageURL string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if outputPath != "" {
		cfg.Output.Path = outputPath
	}
	if imagesDir != "" {
		cfg.Output.ImagesDir = imagesDir
	}
	if counterFile != "" {
		cfg.Output.CounterFile = counterFile
	}
	if s3Bucket != "" {
		cfg.Output.S3Bucket = s3Bucket
	}
	if skipRender {
		cfg.Render.Disabled = true
	}
	if modelName != "" {
		cfg.Model.Name = modelName
	}

	generator, err := services.NewOpenAIGeneratorWithConfig(
		cfg.Model.Name, cfg.Model.Temperature, cfg.Model.MaxTokens, cfg.Model.Timeout.Duration)
	if err != nil {
		return err
	}

	var fetcher services.Renderer
	if cfg.Render.Disabled {
		fetcher = services.NewPlainFetcher()
	} else {
		fetcher = services.NewPageFetcher(cfg.Render.Timeout.Duration)
	}

	counter := services.NewFileCounter(cfg.Output.CounterFile)
	pipeline := services.NewPipeline(
		fetcher,
		services.NewDiscoverer(cfg.Heuristics),
		services.NewSynthesizer(generator),
		services.NewPostProcessor(counter),
	)

	listings, metrics := pipeline.ScrapePage(ctx, pageURL)
	metrics.Finish(generator.TokensUsed())

	if cfg.Output.ImagesDir != "" {
		downloaded := services.NewMediaDownloader().DownloadImages(listings, cfg.Output.ImagesDir)
		log.Printf("[debug] downloaded %d images to %s", downloaded, cfg.Output.ImagesDir)
	}

	output := models.ListingsOutput{
		Metadata: models.NewListingsMetadata(len(listings), []string{pageURL}),
		Listings: listings,
	}
	if err := services.WriteListingsFile(cfg.Output.Path, output); err != nil {
		return err
	}

	// IDs become permanent only once the artifact is safely on disk
	if len(listings) > 0 {
		if err := counter.Commit(listings[len(listings)-1].ID); err != nil {
			return fmt.Errorf("persisting listing counter: %w", err)
		}
	}

	if cfg.Output.S3Bucket != "" {
		publisher, err := services.NewS3Publisher(ctx, cfg.Output.S3Bucket)
		if err != nil {
			return err
		}
		result, err := publisher.PublishListings(ctx, output, filepath.Base(cfg.Output.Path))
		if err != nil {
			return fmt.Errorf("publishing to S3: %w", err)
		}
		log.Printf("[debug] published %s (%d bytes)", result.PublicURL, result.Size)
	}

	fmt.Printf("Saved %d listings to %s\n", len(listings), cfg.Output.Path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
