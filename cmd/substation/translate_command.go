package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"substation/internal/language"
	"substation/internal/translate"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var (
		targetLang string
		sourceLang string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "translate <subtitle-file>",
		Short: "Translate a subtitle file into another language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			target := language.ToISO2(targetLang)
			if target == "" {
				return fmt.Errorf("unknown target language %q", targetLang)
			}
			source := ""
			if sourceLang != "" {
				source = language.ToISO2(sourceLang)
				if source == "" {
					return fmt.Errorf("unknown source language %q", sourceLang)
				}
			}

			inPath := args[0]
			dest := outPath
			if dest == "" {
				dest = translatedPath(inPath, target)
			}

			client, err := translate.NewClient(cfg.Translation)
			if err != nil {
				return err
			}
			pool := translate.NewPool(client, cfg.Translation.Workers, logger)

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := pool.TranslateFile(runCtx, inPath, dest, source, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Translated %s to %s: %s\n",
				inPath, language.DisplayName(target), dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetLang, "to", "", "Target language code")
	cmd.Flags().StringVar(&sourceLang, "from", "", "Source language code (auto-detected when omitted)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output path (defaults to <name>.<lang>.srt beside the input)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// translatedPath derives the output filename, replacing an existing
// language suffix so "movie.en.srt" becomes "movie.de.srt" instead of
// "movie.en.de.srt".
func translatedPath(inPath, target string) string {
	ext := filepath.Ext(inPath)
	stem := strings.TrimSuffix(inPath, ext)
	if idx := strings.LastIndex(stem, "."); idx > 0 {
		if language.ToISO2(stem[idx+1:]) != "" {
			stem = stem[:idx]
		}
	}
	if ext == "" {
		ext = ".srt"
	}
	return stem + "." + target + ext
}
