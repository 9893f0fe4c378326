package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/infra"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/pipeline"
	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/providers/assetgen"
)

// localizer runs the whole pipeline over a single HTML file from the command
// line: detect assets, generate replacements one by one, and write the
// rewritten document plus its manifest.
func main() {
	var (
		inFlag       string
		outFlag      string
		manifestFlag string
		nameFlag     string
		industryFlag string
		locationFlag string
		servicesFlag string
		keywordsFlag string
		localeFlag   string
		timeoutFlag  time.Duration
	)
	flag.StringVar(&inFlag, "in", "", "input HTML file")
	flag.StringVar(&outFlag, "out", "", "output HTML file (defaults to <in>.localized.html)")
	flag.StringVar(&manifestFlag, "manifest", "", "manifest JSON file (defaults to <out>.manifest.json)")
	flag.StringVar(&nameFlag, "name", "", "business name")
	flag.StringVar(&industryFlag, "industry", "", "business industry")
	flag.StringVar(&locationFlag, "location", "", "business location")
	flag.StringVar(&servicesFlag, "services", "", "comma-separated business services")
	flag.StringVar(&keywordsFlag, "keywords", "", "comma-separated style keywords")
	flag.StringVar(&localeFlag, "locale", "", "target locale for on-image text")
	flag.DurationVar(&timeoutFlag, "timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	_ = godotenv.Load()

	if strings.TrimSpace(inFlag) == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		os.Exit(1)
	}
	if strings.TrimSpace(nameFlag) == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(1)
	}
	if outFlag == "" {
		outFlag = strings.TrimSuffix(inFlag, ".html") + ".localized.html"
	}
	if manifestFlag == "" {
		manifestFlag = strings.TrimSuffix(outFlag, ".html") + ".manifest.json"
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "localizer").Logger()

	document, err := os.ReadFile(inFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read input document")
	}

	client, err := assetgen.NewClient(assetgen.Options{
		APIKey:  os.Getenv("ASSETGEN_API_KEY"),
		BaseURL: os.Getenv("ASSETGEN_BASE_URL"),
		Model:   os.Getenv("ASSETGEN_MODEL"),
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}
	generator := assetgen.NewRemoteGenerator(client, assetgen.NewSyntheticGenerator())
	if !client.HasCredentials() {
		logger.Warn().Msg("no assetgen credentials configured, using synthetic references")
	}

	run, err := pipeline.NewRun(pipeline.Config{
		Document: string(document),
		Business: domain.BusinessContext{
			Name:     nameFlag,
			Industry: industryFlag,
			Location: locationFlag,
			Services: splitList(servicesFlag),
		},
		Keywords:  splitList(keywordsFlag),
		Locale:    localeFlag,
		Generator: generator,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create run")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	progress := run.Progress()
	if progress.Total > 0 {
		if err := run.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start run")
		}
		if err := run.Wait(ctx); err != nil {
			logger.Fatal().Err(err).Msg("run did not finish in time")
		}
	}

	result, err := run.Assemble()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to assemble result")
	}

	if err := os.WriteFile(outFlag, []byte(result.FinalDocument), 0o644); err != nil {
		logger.Fatal().Err(err).Msg("failed to write output document")
	}
	manifest, err := json.MarshalIndent(result.Manifest, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode manifest")
	}
	if err := os.WriteFile(manifestFlag, manifest, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("failed to write manifest")
	}

	progress = run.Progress()
	logger.Info().
		Int("total", progress.Total).
		Int("completed", progress.Completed).
		Int("errored", progress.Errored).
		Int("skipped", progress.Skipped).
		Str("out", outFlag).
		Str("manifest", manifestFlag).
		Msg("localization finished")
	if progress.Errored > 0 {
		os.Exit(2)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
