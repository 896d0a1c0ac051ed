package commands

import (
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/version"
	contextutils "github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/utils"
	"github.com/FehrAdvice-Partners-AG/bea-lab-frontend/internal/widget"

	"github.com/spf13/cobra"
)

// SubmitCommand returns the submit command
func SubmitCommand(env *Env) *cobra.Command {
	var (
		message    string
		screenshot string
		pageURL    string
		width      int
		height     int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send feedback like the widget does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := env.requestContext(cmd.Context())
			defer cancel()

			w := widget.New(widget.OptionsFromConfig(env.Config, env.API, env.Logger, nil))
			defer w.Stop()
			w.Open()
			w.SetMessage(message)

			if screenshot != "" {
				upload, err := fileUpload(screenshot)
				if err != nil {
					return err
				}
				if err := w.AttachScreenshot(upload); err != nil {
					return alertError(w, err)
				}
			}

			err := w.Submit(ctx, widget.PageContext{
				URL:          pageURL,
				ScreenWidth:  width,
				ScreenHeight: height,
				UserAgent:    "bea-adm/" + version.Version,
			})
			if err != nil {
				return alertError(w, err)
			}

			if env.JSON {
				return env.printJSON(map[string]string{"status": "ok"})
			}
			env.printf("✅ Danke für dein Feedback! Wir werden es so schnell wie möglich bearbeiten.\n")
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "feedback text")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "path of an image to attach")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "page the feedback is about")
	cmd.Flags().IntVar(&width, "screen-width", 0, "reported screen width")
	cmd.Flags().IntVar(&height, "screen-height", 0, "reported screen height")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

// alertError puts the widget alert in front of err
func alertError(w *widget.Widget, err error) error {
	if alert := w.TakeAlert(); alert != "" {
		return contextutils.WrapError(err, alert)
	}
	return err
}

// fileUpload describes a file on disk as a widget upload
func fileUpload(path string) (widget.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return widget.Upload{}, contextutils.WrapErrorf(err, "failed to read screenshot %s", path)
	}
	return widget.Upload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}
