package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/xackery/replyquote/client"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/quote"
	"github.com/xackery/replyquote/tlog"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "replyquote",
		Short:         "Quote deleted messages when replying to them on discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file path")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Connect to discord and intercept replies (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(&cobra.Command{
		Use:   "variables",
		Short: "List the variables a reply template may use",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, v := range strings.Fields(quote.Variables) {
				fmt.Fprintln(w, v)
			}
			fmt.Fprintf(w, "\n%s\n", quote.TimeFormatHelp)
			fmt.Fprintf(w, "\ndefault template:\n%s\n", quote.DefaultTemplate)
			return nil
		},
	})
	return root
}

func newRenderCmd(configPath *string) *cobra.Command {
	var template string
	var reply string
	cmd := &cobra.Command{
		Use:   "render <record.json>",
		Short: "Render the reply template against a message record, use - for stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open record")
				}
				defer f.Close()
				r = f
			}
			msg := &model.MessageRecord{}
			err := json.NewDecoder(r).Decode(msg)
			if err != nil {
				return errors.Wrap(err, "decode record")
			}

			if template == "" {
				template = quote.DefaultTemplate
				cfg, err := config.Load(*configPath)
				if err == nil {
					template = cfg.Template()
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), quote.Render(template, msg, reply))
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "", "template to render, defaults to the configured one")
	cmd.Flags().StringVarP(&reply, "reply", "r", "", "reply text used for {reply}")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tlog.Infof("starting replyquote %s", Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)

	c, err := client.New(ctx, configPath)
	if err != nil {
		if err == config.ErrNewConfig {
			tlog.Infof("a new %s was created, edit it then start replyquote again", configPath)
			return nil
		}
		return errors.Wrap(err, "new client")
	}

	err = c.Connect(ctx)
	if err != nil {
		return errors.Wrap(err, "connect")
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err = <-runErr:
		if err != nil {
			tlog.Errorf("run: %s", err)
		}
	case <-signalChan:
		tlog.Infof("exiting, interrupt signal sent")
	}
	err = c.Disconnect(ctx)
	if err != nil {
		return errors.Wrap(err, "disconnect")
	}
	tlog.Infof("exited safely")
	return nil
}
