// Command sparsefeed loads LIBSVM datasets through the concurrent row-block
// parser: benchmark read throughput, convert text datasets to the binary
// row-block format, and inspect converted files.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/sparsefeed/pkg/config"
	"github.com/ajitpratap0/sparsefeed/pkg/libsvm"
	"github.com/ajitpratap0/sparsefeed/pkg/logger"
	"github.com/ajitpratap0/sparsefeed/pkg/metrics"
	"github.com/ajitpratap0/sparsefeed/pkg/rowblock"
	"github.com/ajitpratap0/sparsefeed/pkg/split"
)

var version = "0.1.0"

func main() {
	var logLevel string
	var configFile string

	root := &cobra.Command{
		Use:   "sparsefeed",
		Short: "sparsefeed - high-throughput LIBSVM dataset loader",
		Long: `sparsefeed streams LIBSVM text datasets into compact sparse row blocks
using a multi-worker parser, fast enough that parsing is not the bottleneck
ahead of computation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&configFile, "config", "", "loader config YAML file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sparsefeed v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(benchCommand(&configFile))
	root.AddCommand(convertCommand(&configFile))
	root.AddCommand(inspectCommand())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// loadConfig builds a LoaderConfig from the optional config file plus flags.
func loadConfig(configFile, uri string, workers, chunkSize, numParts int) (*config.LoaderConfig, error) {
	cfg := config.NewLoaderConfig(uri, libsvm.FormatLibSVM)
	if configFile != "" {
		if err := config.Load(configFile, cfg); err != nil {
			return nil, err
		}
	}
	if uri != "" {
		cfg.URI = uri
	}
	if workers > 0 {
		cfg.Performance.Workers = workers
	}
	if chunkSize > 0 {
		cfg.Performance.ChunkSizeBytes = chunkSize
	}
	if numParts > 0 {
		cfg.NumParts = numParts
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func benchCommand(configFile *string) *cobra.Command {
	var workers, chunkSize, numParts, part int
	var memoryMap bool

	cmd := &cobra.Command{
		Use:   "bench <uri>",
		Short: "Measure parse throughput over a dataset",
		Long: `Stream a dataset through the parser and report throughput. With
--parts > 1 and --part -1, all partitions are read concurrently, one
iterator each, simulating cooperative readers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile, args[0], workers, chunkSize, numParts)
			if err != nil {
				return err
			}
			if memoryMap {
				cfg.Performance.MemoryMap = true
			}

			parts := []int{part}
			if part < 0 {
				parts = parts[:0]
				for i := 0; i < cfg.NumParts; i++ {
					parts = append(parts, i)
				}
			}

			tracker := metrics.NewThroughputTracker()
			g, ctx := errgroup.WithContext(cmd.Context())
			rows := make([]int, len(parts))
			for i, p := range parts {
				i, p := i, p
				g.Go(func() error {
					partCfg := *cfg
					partCfg.PartIndex = p
					n, err := benchPartition(ctx, &partCfg, tracker)
					rows[i] = n
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			total := 0
			for _, n := range rows {
				total += n
			}
			logger.Info("bench complete",
				zap.Int("rows", total),
				zap.Int("parts", len(parts)),
				zap.Float64("mb_per_sec", tracker.MBPerSec()))
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parser workers per partition (0 = NumCPU)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in bytes")
	cmd.Flags().IntVar(&numParts, "parts", 1, "number of dataset partitions")
	cmd.Flags().IntVar(&part, "part", -1, "partition to read (-1 = all, concurrently)")
	cmd.Flags().BoolVar(&memoryMap, "mmap", false, "memory-map local input files")
	return cmd
}

func benchPartition(ctx context.Context, cfg *config.LoaderConfig, tracker *metrics.ThroughputTracker) (int, error) {
	it, err := libsvm.CreateWithConfig[uint32](ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer it.Close() //nolint:errcheck

	log := logger.With(zap.Int("part", cfg.PartIndex))
	var rows int
	var reported, nextReport int64 = 0, 10 << 20
	for {
		ok, err := it.Next()
		if err != nil {
			return rows, err
		}
		if !ok {
			break
		}
		b, err := it.Value()
		if err != nil {
			return rows, err
		}
		rows += b.Size()

		read := it.BytesRead()
		tracker.Add(read - reported)
		reported = read
		if read >= nextReport {
			log.Info("reading",
				zap.Int64("mb_read", read>>20),
				zap.Float64("mb_per_sec", tracker.MBPerSec()))
			nextReport += 10 << 20
		}
	}
	return rows, nil
}

func convertCommand(configFile *string) *cobra.Command {
	var workers, chunkSize int

	cmd := &cobra.Command{
		Use:   "convert <uri> <output>",
		Short: "Convert a LIBSVM dataset to a binary row-block file",
		Long: `Parse a LIBSVM text dataset and write it as a single binary row block.
A .gz, .zst, .s2 or .lz4 output extension compresses the result.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile, args[0], workers, chunkSize, 1)
			if err != nil {
				return err
			}

			it, err := libsvm.CreateWithConfig[uint32](cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer it.Close() //nolint:errcheck

			data := rowblock.NewContainer[uint32]()
			for {
				ok, err := it.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				b, err := it.Value()
				if err != nil {
					return err
				}
				if err := rowblock.PushBlock(data, b); err != nil {
					return err
				}
			}

			out := args[1]
			f, err := os.Create(out) //nolint:gosec // G304: output path is the user's own argument
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck

			bw := bufio.NewWriterSize(f, 1<<20)
			switch ext := filepath.Ext(out); ext {
			case ".gz", ".zst", ".s2", ".lz4":
				cw, closeFn, err := split.NewCompressedWriter(bw, ext)
				if err != nil {
					return err
				}
				if err := data.Save(cw); err != nil {
					return err
				}
				if err := closeFn(); err != nil {
					return err
				}
			default:
				if err := data.Save(bw); err != nil {
					return err
				}
			}
			if err := bw.Flush(); err != nil {
				return err
			}

			logger.Info("convert complete",
				zap.String("output", out),
				zap.Int("rows", data.Size()),
				zap.Uint64("num_col", uint64(data.MaxIndex())+1),
				zap.Uint64("nnz", data.NNZ()))
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parser workers (0 = NumCPU)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in bytes")
	return cmd
}

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a binary row-block file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) //nolint:gosec // G304: input path is the user's own argument
			if err != nil {
				return err
			}
			defer f.Close() //nolint:errcheck

			var r io.Reader = bufio.NewReaderSize(f, 1<<20)
			switch ext := filepath.Ext(args[0]); ext {
			case ".gz", ".zst", ".s2", ".lz4":
				cr, err := split.NewCompressedReader(r, ext)
				if err != nil {
					return err
				}
				defer cr.Close() //nolint:errcheck
				r = cr
			}

			data := rowblock.NewContainer[uint32]()
			if err := data.Load(r); err != nil {
				return err
			}
			b := data.Block()

			fmt.Printf("rows:    %d\n", b.Size())
			fmt.Printf("columns: %d\n", uint64(data.MaxIndex())+1)
			fmt.Printf("nnz:     %d\n", b.NNZ())
			if b.Value == nil {
				fmt.Println("values:  implicit (all 1.0)")
			} else {
				fmt.Println("values:  explicit")
			}
			return nil
		},
	}
}
