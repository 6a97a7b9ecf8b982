package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/config"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/logging"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/workflow"
)

func generateCmd(configPath *string) *cobra.Command {
	var (
		prompt      string
		projectType string
		outDir      string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a project once and write the files to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, prompt, projectType, outDir)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "what to build")
	cmd.Flags().StringVarP(&projectType, "type", "t", string(types.ProjectFrontend), "frontend, backend or fullstack")
	cmd.Flags().StringVarP(&outDir, "out", "o", "./site", "directory to write the generated files into")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func runGenerate(ctx context.Context, configPath, prompt, projectType, outDir string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	log := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Env:     cfg.AppEnv,
		LogFile: cfg.LogFile,
	})

	ptype, err := types.ParseProjectType(projectType)
	if err != nil {
		return err
	}

	client, err := buildLLM(cfg)
	if err != nil {
		return err
	}
	engine := workflow.NewEngine(client, log)

	res, err := engine.Generate(ctx, workflow.GenerateRequest{
		Prompt:      prompt,
		ProjectType: ptype,
		OnPhase: func(phase string) {
			fmt.Printf("==> %s\n", phase)
		},
		OnFile: func(f types.GeneratedFile) {
			fmt.Printf("    %s\n", f.Path)
		},
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	for _, f := range res.Files {
		target := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("cannot write %s: %w", target, err)
		}
	}

	fmt.Printf("\nWrote %d files to %s\n", len(res.Files), outDir)
	for _, msg := range res.Messages {
		fmt.Println(msg)
	}
	if res.Degraded() {
		fmt.Printf("Finished with %d unresolved validation errors:\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("  %s: %s\n", e.File, e.Message)
		}
	}
	return nil
}
