package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
	"github.com/bonkgo-dev/bonkgo/pkg/mapstore"
)

// storeFlags locate the S3 map archive. Credentials come from the
// standard AWS environment variables.
type storeFlags struct {
	bucket   string
	prefix   string
	region   string
	endpoint string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.bucket, "bucket", "b", "", "S3 bucket holding the archive")
	cmd.PersistentFlags().StringVar(&f.prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.PersistentFlags().StringVar(&f.region, "region", "us-east-1", "S3 region")
	cmd.PersistentFlags().StringVar(&f.endpoint, "endpoint", "", "Custom S3 endpoint (MinIO etc.)")
}

func (f *storeFlags) store() (*mapstore.Store, error) {
	if f.bucket == "" {
		return nil, fmt.Errorf("--bucket is required")
	}
	key := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if key == "" || secret == "" {
		return nil, fmt.Errorf("set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}

	opts := s3.Options{
		Region: f.region,
		Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     key,
				SecretAccessKey: secret,
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			}, nil
		}),
	}
	if f.endpoint != "" {
		opts.BaseEndpoint = aws.String(f.endpoint)
		opts.UsePathStyle = true
	}

	var storeOpts []mapstore.Option
	if f.prefix != "" {
		storeOpts = append(storeOpts, mapstore.WithPrefix(f.prefix))
	}
	storeOpts = append(storeOpts, mapstore.WithLogger(slog.Default()))
	return mapstore.New(s3.New(opts), f.bucket, storeOpts...), nil
}

func mapCmd() *cobra.Command {
	var flags storeFlags

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Archive encoded maps in an S3 bucket",
	}
	flags.register(cmd)
	cmd.AddCommand(mapPushCmd(&flags), mapPullCmd(&flags), mapListCmd(&flags), mapDeleteCmd(&flags))
	return cmd
}

func mapPushCmd(flags *storeFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push <map.json>",
		Short: "Upload a map from its JSON form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.store()
			if err != nil {
				return err
			}
			m, err := readMapFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = m.Metadata.Name
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), ".json")
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := store.Put(ctx, name, m); err != nil {
				return err
			}
			fmt.Printf("pushed %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Archive key (default: map name)")

	return cmd
}

func mapPullCmd(flags *storeFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Download a map as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.store()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			m, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(m.ToJSON(), "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" || out == "-" {
				os.Stdout.Write(data)
				return nil
			}
			return os.WriteFile(out, data, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func mapListCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List maps in the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.store()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			entries, err := store.List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, e.Size, e.Modified.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func mapDeleteCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a map from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := flags.store()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", args[0])
			return nil
		},
	}
}

func readMapFile(path string) (*bonkmap.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bonkmap.FromJSON(obj)
}
