package endpoints

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/supersonicwisd1/mandolin/internal/api"
	"github.com/supersonicwisd1/mandolin/internal/svcctx"
)

// ProcessedFile describes one PDF in the output directory.
type ProcessedFile struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// FileListResponse is the response for the file listing endpoint.
type FileListResponse struct {
	Files []ProcessedFile `json:"files"`
}

// ListFilesEndpoint handles GET /api/v1/files.
type ListFilesEndpoint struct{}

var _ api.Endpoint = (*ListFilesEndpoint)(nil)

func (e *ListFilesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/files", e.handler
}

func (e *ListFilesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List processed PDFs available for download
//	@Tags		files
//	@Produce	json
//	@Success	200	{object}	FileListResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/v1/files [get]
func (e *ListFilesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return
	}

	resp := FileListResponse{Files: []ProcessedFile{}}

	entries, err := os.ReadDir(homeDir.OutputPath())
	if err != nil {
		// Missing output dir means nothing processed yet
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		resp.Files = append(resp.Files, ProcessedFile{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListFilesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List processed PDFs on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp FileListResponse
			if err := client.Get(cmd.Context(), "/api/v1/files", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DownloadFileEndpoint handles GET /api/v1/files/{filename}.
type DownloadFileEndpoint struct{}

var _ api.Endpoint = (*DownloadFileEndpoint)(nil)

func (e *DownloadFileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/files/{filename}", e.handler
}

func (e *DownloadFileEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Download a processed PDF by filename
//	@Tags		files
//	@Produce	application/pdf
//	@Param		filename	path	string	true	"File name from the listing endpoint"
//	@Success	200	{file}		binary
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/v1/files/{filename} [get]
func (e *DownloadFileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")

	// Reject anything that could escape the output directory
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return
	}

	filePath := homeDir.OutputFilePath(filename)
	if _, err := os.Stat(filePath); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, filePath)
}

func (e *DownloadFileEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "get <filename>",
		Short: "Download a processed PDF from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			dest := outFile
			if dest == "" {
				dest = filename
			}

			client := api.NewClient(getServerURL())
			if err := client.DownloadFile(cmd.Context(), "/api/v1/files/"+filename, dest); err != nil {
				return err
			}
			cmd.Printf("Saved %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&outFile, "out", "", "Local path to save the file (default: same name)")
	return cmd
}
