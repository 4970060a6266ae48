package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/recognizer"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Drive a session with phrases typed on stdin",
	Long: `Starts a session (demo mode when nobody is signed in) and treats each
line on stdin as one voice utterance. After every utterance the active view
and the selected company are printed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		rec := &eofRecognizer{Recognizer: recognizer.NewReaderRecognizer(os.Stdin)}
		app, err := newApplication(cmd.Context(), cfg, log, rec)
		if err != nil {
			return err
		}
		defer app.close()

		ctx := cmd.Context()
		o := app.orchestrator
		if err := o.Start(ctx); err != nil {
			return err
		}
		if !o.Snapshot().AuthState.IsAuthenticated() {
			if _, err := o.SkipAuth(ctx); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for {
			if err := o.StartVoice(ctx); err != nil {
				return err
			}
			app.orchestrator.WaitVoice()
			if rec.done.Load() {
				return nil
			}

			snap := o.Snapshot()
			company := "-"
			if snap.Company != nil {
				company = snap.Company.RazonSocial
			}
			fmt.Fprintf(out, "%-10s view=%s scenario=%s company=%s\n",
				snap.Voice.LastIntent, snap.ActiveView, snap.Scenario, company)
			if snap.Voice.LastError != "" {
				fmt.Fprintf(out, "  error: %s\n", snap.Voice.LastError)
			}
		}
	},
}

// eofRecognizer notes when the input stream is exhausted
type eofRecognizer struct {
	speech.Recognizer
	done atomic.Bool
}

func (r *eofRecognizer) Recognize(ctx context.Context, opts speech.RecognizeOptions) (string, error) {
	text, err := r.Recognizer.Recognize(ctx, opts)
	if errors.Is(err, io.EOF) {
		r.done.Store(true)
	}
	return text, err
}
