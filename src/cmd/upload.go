package cmd

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/permadoc/permadoc/src/archive"

	"github.com/spf13/cobra"
)

var (
	uploadContentType string
	uploadEncrypted   bool
	uploadTags        []string
	uploadCorrelation []string
)

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "content type, detected from the extension when empty")
	uploadCmd.Flags().BoolVar(&uploadEncrypted, "encrypted", false, "mark the payload as encrypted")
	uploadCmd.Flags().StringArrayVar(&uploadTags, "tag", nil, "extra tag, name=value")
	uploadCmd.Flags().StringArrayVar(&uploadCorrelation, "correlation", nil, "correlation id, key=value")
	RootCmd.AddCommand(uploadCmd)
}

func parsePairs(pairs []string) (out map[string]string, err error) {
	if len(pairs) == 0 {
		return
	}
	out = make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || len(name) == 0 {
			return nil, fmt.Errorf("malformed pair: %s", pair)
		}
		out[name] = value
	}
	return
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more files, multiple files go up as one batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tags, err := parsePairs(uploadTags)
		if err != nil {
			return
		}
		correlationIds, err := parsePairs(uploadCorrelation)
		if err != nil {
			return
		}

		arch := archive.NewArchive(conf)
		err = arch.InitFromFile()
		if err != nil {
			return
		}

		err = arch.Start()
		if err != nil {
			return
		}
		defer arch.StopWait()

		contentType := func(path string) string {
			if len(uploadContentType) > 0 {
				return uploadContentType
			}
			detected := mime.TypeByExtension(filepath.Ext(path))
			if len(detected) == 0 {
				detected = "application/octet-stream"
			}
			return detected
		}

		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			result, err := arch.UploadDocument(ctx, data, archive.Metadata{
				Name:           filepath.Base(args[0]),
				ContentType:    contentType(args[0]),
				CorrelationIds: correlationIds,
				Encrypted:      uploadEncrypted,
			}, archive.UploadOptions{Tags: tags})
			if err != nil {
				return err
			}

			return printJSON(result)
		}

		files := make([]archive.File, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			files = append(files, archive.File{
				Key:  filepath.Base(path),
				Data: data,
				Metadata: archive.Metadata{
					Name:           filepath.Base(path),
					ContentType:    contentType(path),
					CorrelationIds: correlationIds,
					Encrypted:      uploadEncrypted,
				},
			})
		}

		result, err := arch.UploadBatch(ctx, files, tags)
		if err != nil {
			return
		}

		return printJSON(result)
	},
}
