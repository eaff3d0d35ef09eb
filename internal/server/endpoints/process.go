package endpoints

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supersonicwisd1/mandolin/internal/api"
	"github.com/supersonicwisd1/mandolin/internal/paform"
	"github.com/supersonicwisd1/mandolin/internal/svcctx"
)

// ProcessedFormFilename is the download name for filled PA forms returned
// by the process endpoint.
const ProcessedFormFilename = "processed_pa_form.pdf"

// ProcessEndpoint handles POST /api/v1/process with multipart file upload.
type ProcessEndpoint struct{}

var _ api.Endpoint = (*ProcessEndpoint)(nil)

func (e *ProcessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/process", e.handler
}

func (e *ProcessEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Process a prior authorization form
//	@Description	Upload a PA form PDF and a referral document; returns the filled PDF
//	@Tags			process
//	@Accept			mpfd
//	@Produce		application/pdf
//	@Param			pa_form			formData	file	true	"PA form PDF to fill"
//	@Param			referral_document	formData	file	true	"Referral document (PDF or image)"
//	@Param			output_dir		formData	string	false	"Server-side directory for output files"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/v1/process [post]
func (e *ProcessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	paForm, err := singleFile(r, "pa_form")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !strings.HasSuffix(strings.ToLower(paForm.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a PDF", paForm.Filename))
		return
	}

	referral, err := singleFile(r, "referral_document")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	if homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "home directory not initialized")
		return
	}
	registry := svcctx.RegistryFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	outputDir := r.FormValue("output_dir")
	if outputDir == "" {
		outputDir = homeDir.OutputPath()
	}

	// Per-request scratch directory, always cleaned up
	tempDir, err := os.MkdirTemp(homeDir.UploadsPath(), "req-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	paFormPath, err := saveUpload(paForm, tempDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	referralPath, err := saveUpload(referral, tempDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	processor := paform.NewProcessor(logger, registry)
	result := processor.Process(r.Context(), paFormPath, referralPath, outputDir)

	if result.Success && result.FilledPDFPath != "" {
		if _, err := os.Stat(result.FilledPDFPath); err == nil {
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ProcessedFormFilename))
			http.ServeFile(w, r, result.FilledPDFPath)
			return
		}
	}

	msg := result.ErrorMessage
	if msg == "" {
		msg = "processing completed but no output file was produced"
	}
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %s", msg))
}

// singleFile returns the first uploaded file for a multipart field.
func singleFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("missing required file field %q", field)
	}
	return files[0], nil
}

// saveUpload writes an uploaded file into dir, keeping only the base name.
func saveUpload(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(dir, filepath.Base(fh.Filename))
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return destPath, nil
}

func (e *ProcessEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		paFormPath   string
		referralPath string
		outputDir    string
		outFile      string
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a PA form against a referral document",
		Long: `Upload a PA form and referral document to the server for processing.

The server analyzes the form, OCRs the referral, extracts facts with the
configured LLM, maps them onto the form fields, and returns the filled PDF.

Examples:
  mandolin process --pa-form form.pdf --referral referral.pdf
  mandolin process --pa-form form.pdf --referral scan.png --out filled.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			files := map[string]string{
				"pa_form":           paFormPath,
				"referral_document": referralPath,
			}
			fields := map[string]string{}
			if outputDir != "" {
				fields["output_dir"] = outputDir
			}

			if err := client.PostFiles(cmd.Context(), "/api/v1/process", files, fields, outFile); err != nil {
				return err
			}
			cmd.Printf("Saved filled form to %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&paFormPath, "pa-form", "", "PA form PDF to fill (required)")
	cmd.Flags().StringVar(&referralPath, "referral", "", "Referral document, PDF or image (required)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Server-side output directory")
	cmd.Flags().StringVar(&outFile, "out", ProcessedFormFilename, "Local path for the downloaded PDF")
	cmd.MarkFlagRequired("pa-form")
	cmd.MarkFlagRequired("referral")
	return cmd
}
