package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/vjtap/internal/config"
	"firestige.xyz/vjtap/internal/filter"
	"firestige.xyz/vjtap/internal/link"
	"firestige.xyz/vjtap/internal/log"
	"firestige.xyz/vjtap/internal/metrics"
	"firestige.xyz/vjtap/internal/pipeline"
	"firestige.xyz/vjtap/internal/sink/console"
	"firestige.xyz/vjtap/internal/sink/pcap"
	"firestige.xyz/vjtap/internal/source/file"
	"firestige.xyz/vjtap/internal/vj"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decompress the VJ headers of a PPP capture",
	Long: `Replay a PPP capture through the header decompressor.

Flags override the matching config keys.

Examples:
  vjtap decode -i ppp.pcap                      # Print every packet to the console
  vjtap decode -i ppp.pcap -o ip.pcap --quiet   # Write reconstructed datagrams only
  vjtap decode -c vjtap.yml --slots 32          # Peer negotiated 32 slots
  vjtap decode -i ppp.pcap -f 'tcp port 23'     # Only telnet traffic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := applyDecodeFlags(cmd, cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runDecode(ctx, cfg, cmd.OutOrStdout())
	},
}

var (
	decodeInput     string
	decodeOutput    string
	decodeSlots     int
	decodeDirection string
	decodeQuiet     bool
	decodeFilter    string
)

func init() {
	decodeCmd.Flags().StringVarP(&decodeInput, "input", "i", "", "capture file to decode (input.file)")
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "raw-IP pcap to write (output.pcap)")
	decodeCmd.Flags().IntVar(&decodeSlots, "slots", vj.DefaultSlots, "connection slots per direction (codec.slots)")
	decodeCmd.Flags().StringVar(&decodeDirection, "direction", "received",
		"direction of frames without a direction byte: received|sent (input.direction)")
	decodeCmd.Flags().StringVarP(&decodeFilter, "filter", "f", "", "BPF expression over reconstructed datagrams (output.filter)")
	decodeCmd.Flags().BoolVarP(&decodeQuiet, "quiet", "q", false, "do not print packets to the console")
}

// applyDecodeFlags copies explicitly set flags over cfg and revalidates it.
func applyDecodeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input.File = decodeInput
	}
	if flags.Changed("output") {
		cfg.Output.Pcap = decodeOutput
	}
	if flags.Changed("slots") {
		cfg.Codec.Slots = decodeSlots
	}
	if flags.Changed("direction") {
		cfg.Input.Direction = decodeDirection
	}
	if flags.Changed("filter") {
		cfg.Output.Filter = decodeFilter
	}
	if decodeQuiet {
		cfg.Output.Console = false
	}
	return cfg.ValidateAndApplyDefaults()
}

// runDecode wires source, codec and sinks from cfg and replays the capture.
// Console output and the final statistics go to w.
func runDecode(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if err := log.Init(&cfg.Log); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	src, err := file.Open(cfg.Input.File)
	if err != nil {
		return err
	}
	defer src.Close()

	dispatcher, err := link.NewDispatcher(src.LinkType(), cfg.Direction())
	if err != nil {
		return err
	}
	session, err := vj.NewSession(cfg.Codec.Slots)
	if err != nil {
		return err
	}

	var sinks []pipeline.Sink
	if cfg.Output.Console {
		sinks = append(sinks, console.NewSink(w, cfg.Output.Color))
	}
	var pcapSink *pcap.Sink
	if cfg.Output.Pcap != "" {
		pcapSink, err = pcap.NewSink(cfg.Output.Pcap)
		if err != nil {
			return err
		}
		defer pcapSink.Close()
		sinks = append(sinks, pcapSink)
	}

	b := pipeline.NewBuilder().
		WithSource(src).
		WithDispatcher(dispatcher).
		WithSession(session).
		WithSinks(sinks...).
		WithBufferSize(cfg.Codec.BufferSize)
	if cfg.Output.Filter != "" {
		f, err := filter.Compile(cfg.Output.Filter)
		if err != nil {
			return err
		}
		b = b.WithFilter(f)
	}
	p, err := b.Build()
	if err != nil {
		return err
	}

	runErr := p.Run(ctx)
	if pcapSink != nil {
		if err := pcapSink.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	printStats(w, p.Stats())
	return runErr
}

func printStats(w io.Writer, st pipeline.Stats) {
	fmt.Fprintf(w, "\nreceived:        %d\n", st.Received)
	fmt.Fprintf(w, "baselines:       %d\n", st.Baselines)
	fmt.Fprintf(w, "decompressed:    %d\n", st.Decompressed)
	fmt.Fprintf(w, "passthrough:     %d\n", st.Passthrough)
	fmt.Fprintf(w, "tossed:          %d\n", st.Tossed)
	fmt.Fprintf(w, "filtered:        %d\n", st.Filtered)
	fmt.Fprintf(w, "decode errors:   %d\n", st.DecodeErrors)
	fmt.Fprintf(w, "dispatch errors: %d\n", st.DispatchErrors)

	kinds := make([]string, 0, len(st.ErrorKinds))
	for k := range st.ErrorKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-17s %d\n", k, st.ErrorKinds[k])
	}
}
