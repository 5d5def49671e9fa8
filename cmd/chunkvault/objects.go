package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chunkvault/chunkvault/internal/storage"
	"github.com/chunkvault/chunkvault/pkg/bytesize"
)

func newCreateCmd() *cobra.Command {
	var (
		contentType string
		sizeStr     string
		public      bool
		tagPairs    []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an object record",
		Long: `Create an object record with a declared size. The object id is
printed on success; upload chunks with "put" afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if identity == "" {
				return fmt.Errorf("create requires --identity")
			}

			size, err := bytesize.Parse(sizeStr)
			if err != nil {
				return fmt.Errorf("invalid --size: %w", err)
			}

			tags, err := parseTags(tagPairs)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			id, err := engine.CreateObject(identity, args[0], contentType, size, public, tags)
			if err != nil {
				return err
			}
			if err := saveEngine(cfg, engine); err != nil {
				return err
			}

			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "application/octet-stream", "object content type")
	cmd.Flags().StringVar(&sizeStr, "size", "", "declared total size, e.g. 1.5MB (required)")
	cmd.Flags().BoolVar(&public, "public", false, "make the object publicly readable")
	cmd.Flags().StringArrayVar(&tagPairs, "tag", nil, "key=value tag (repeatable, order preserved)")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <object-id> <file>",
		Short: "Upload a file as chunks",
		Long: `Split a file into chunks of the configured maximum chunk size and
upload them in index order. Re-running put overwrites existing chunks
idempotently.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			objectID, path := args[0], args[1]

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			chunkSize := cfg.MaxChunkSize.Bytes()
			count := 0
			for offset := int64(0); ; offset += chunkSize {
				end := offset + chunkSize
				if end > int64(len(data)) {
					end = int64(len(data))
				}
				if err := engine.UploadChunk(identity, objectID, count, data[offset:end]); err != nil {
					return err
				}
				count++
				if end == int64(len(data)) {
					break
				}
			}

			if err := saveEngine(cfg, engine); err != nil {
				return err
			}
			fmt.Printf("uploaded %d chunk(s), %s\n", count, bytesize.Format(int64(len(data))))
			return nil
		},
	}
	return cmd
}

func newCatCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cat <object-id>",
		Short: "Reconstruct an object and write its bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			data, err := engine.ReadObject(identity, args[0])
			if err != nil {
				return err
			}

			if output != "" {
				return os.WriteFile(output, data, 0644)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <object-id>",
		Short: "Delete an object and all its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			if err := engine.DeleteObject(identity, args[0]); err != nil {
				return err
			}
			return saveEngine(cfg, engine)
		},
	}
}

func newLsCmd() *cobra.Command {
	var (
		owner       string
		public      bool
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			var records []storage.ObjectRecord
			switch {
			case owner != "":
				records = engine.ListOwnerObjects(owner)
			case contentType != "":
				records = engine.ListByContentType(contentType)
			case public:
				records = engine.ListPublicObjects()
			default:
				return fmt.Errorf("specify one of --owner, --public, or --content-type")
			}

			for _, rec := range records {
				visibility := "private"
				if rec.Public {
					visibility = "public"
				}
				fmt.Printf("%s  %-8s  %-10s  %-24s  %s\n",
					rec.ID, visibility, bytesize.Format(rec.Size), rec.ContentType, rec.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "list an owner's objects in creation order")
	cmd.Flags().BoolVar(&public, "public", false, "list public objects")
	cmd.Flags().StringVar(&contentType, "content-type", "", "list public objects with this content type")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <object-id>",
		Short: "Show object metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			rec, ok := engine.GetObjectInfo(args[0])
			if !ok {
				return storage.ErrNotFound
			}

			fmt.Printf("ID:            %s\n", rec.ID)
			fmt.Printf("Name:          %s\n", rec.Name)
			fmt.Printf("Owner:         %s\n", rec.Owner)
			fmt.Printf("Content-Type:  %s\n", rec.ContentType)
			fmt.Printf("Declared size: %s (%d bytes)\n", bytesize.Format(rec.Size), rec.Size)
			fmt.Printf("Chunks:        %d expected\n", rec.ExpectedChunkCount(cfg.MaxChunkSize.Bytes()))
			fmt.Printf("Public:        %v\n", rec.Public)
			fmt.Printf("Created:       %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			for _, tag := range rec.Tags {
				fmt.Printf("Tag:           %s=%s\n", tag.Key, tag.Value)
			}
			return nil
		},
	}
}

func newOwnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owners",
		Short: "List owners with object counts and committed bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			_, _, owners, _ := engine.ExportTables()
			for _, entry := range owners {
				fmt.Printf("%-24s  %4d object(s)  %s\n",
					entry.Owner, len(entry.ObjectIDs),
					bytesize.Format(engine.OwnerStorageUsed(entry.Owner)))
			}
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show storage accounting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := openEngine(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Declared total: %s\n", bytesize.Format(engine.TotalStorageUsed()))
			if owner != "" {
				fmt.Printf("Committed (%s): %s\n", owner, bytesize.Format(engine.OwnerStorageUsed(owner)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "also show one owner's committed bytes")
	return cmd
}

// parseTags converts repeated key=value flags into ordered tags.
func parseTags(pairs []string) ([]storage.Tag, error) {
	tags := make([]storage.Tag, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q: want key=value", pair)
		}
		tags = append(tags, storage.Tag{Key: key, Value: value})
	}
	return tags, nil
}
