package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// CertificateFileMaxSize caps proof uploads at 5 MiB.
const CertificateFileMaxSize = 5 << 20

// certificateExtensions is the proof-file whitelist: documents and the
// common image formats.
var certificateExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// imageMimeTypes lists the content types we can verify by sniffing. PDFs
// are accepted on extension alone since DetectContentType flags them as
// application/pdf too.
var certificateMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
}

// ValidateCertificateFile checks a proof upload against the size cap, the
// extension whitelist and the sniffed content type. Sniffing reads the
// first 512 bytes and rewinds, so the header stays usable afterwards.
func ValidateCertificateFile(header *multipart.FileHeader) error {
	if header.Size > CertificateFileMaxSize {
		return fmt.Errorf("File too large (max 5 MB).")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !certificateExtensions[ext] {
		return fmt.Errorf("File extension %q is not allowed. Allowed extensions are: pdf, png, jpg, jpeg, webp.", strings.TrimPrefix(ext, "."))
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if seeker, ok := file.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to reset file pointer: %w", err)
		}
	}

	detected := http.DetectContentType(buffer[:n])
	// DetectContentType reports generic octet-stream for some valid PDFs;
	// the extension check above already constrains those.
	if detected != "application/octet-stream" && !certificateMimeTypes[strings.Split(detected, ";")[0]] {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return nil
}
