package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"

	"github.com/kochabx/authkit/core/auth/audit"
	"github.com/kochabx/authkit/log"
	kkafka "github.com/kochabx/authkit/store/kafka"
)

var (
	auditGroup    string
	auditTypes    []string
	auditFailures bool
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect authentication audit events",
}

// auditTailCmd represents the audit tail command
var auditTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print audit events from the kafka topic as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := kkafka.New(&cfg.Kafka, kkafka.WithLogger(log.G))
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		r, err := c.ConsumerGroup(cfg.Audit.Topic, auditGroup)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info().Str("topic", cfg.Audit.Topic).Str("group", auditGroup).Msg("tailing audit events")
		return tail(ctx, r, cmd.OutOrStdout(), eventFilter{types: auditTypes, failuresOnly: auditFailures})
	},
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type eventFilter struct {
	types        []string
	failuresOnly bool
}

func (f eventFilter) match(e audit.Event) bool {
	if f.failuresOnly && e.Success {
		return false
	}
	return len(f.types) == 0 || slices.Contains(f.types, string(e.Type))
}

// tail 逐条读取直到 ctx 结束，无法解析的消息跳过
func tail(ctx context.Context, r messageReader, w io.Writer, f eventFilter) error {
	enc := json.NewEncoder(w)
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var e audit.Event
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			log.Warn().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("skip malformed audit event")
			continue
		}
		if !f.match(e) {
			continue
		}
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditTailCmd)

	auditTailCmd.Flags().StringVar(&auditGroup, "group", "authkit-audit-tail", "Consumer group, empty reads the configured partition")
	auditTailCmd.Flags().StringSliceVar(&auditTypes, "type", nil, "Event type to print (login, refresh, logout), repeatable")
	auditTailCmd.Flags().BoolVar(&auditFailures, "failures", false, "Only print failed events")
}
