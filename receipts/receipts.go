// Package receipts renders paid-in-full receipts and archives them.
package receipts

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/phillip/event-registration-go/mailer"
	"github.com/phillip/event-registration-go/models"
)

//go:embed templates/receipt.html
var templateFS embed.FS

// Uploader stores documents by public id. utils.Cloudinary satisfies it.
type Uploader interface {
	UploadRaw(ctx context.Context, publicID string, body io.Reader) (string, error)
	Delete(ctx context.Context, resourceURL string) error
}

type Archiver struct {
	uploader Uploader
	event    string
	tpl      *template.Template
	now      func() time.Time
}

func NewArchiver(uploader Uploader, eventName string) (*Archiver, error) {
	tpl, err := template.New("receipt.html").Funcs(template.FuncMap{
		"money": mailer.FormatAmount,
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.UTC().Format("02/01/2006 15:04")
		},
	}).ParseFS(templateFS, "templates/receipt.html")
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Archiver{uploader: uploader, event: eventName, tpl: tpl, now: time.Now}, nil
}

// Render writes the HTML receipt for reg.
func (a *Archiver) Render(w io.Writer, reg *models.Registration) error {
	issued := a.now()
	lang := models.LanguageFrench
	if reg.Language == models.LanguageEnglish {
		lang = models.LanguageEnglish
	}
	return a.tpl.Execute(w, struct {
		Lang     string
		Event    string
		Reg      *models.Registration
		IssuedAt *time.Time
	}{lang, a.event, reg, &issued})
}

// ArchiveReceipt uploads the receipt as receipts/<confirmation code>.
func (a *Archiver) ArchiveReceipt(ctx context.Context, reg *models.Registration) (string, error) {
	if !reg.IsFullyPaid {
		return "", fmt.Errorf("registration %s is not fully paid", reg.ID.Hex())
	}
	var buf bytes.Buffer
	if err := a.Render(&buf, reg); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	url, err := a.uploader.UploadRaw(ctx, reg.ConfirmationCode, &buf)
	if err != nil {
		return "", fmt.Errorf("upload receipt %s: %w", reg.ConfirmationCode, err)
	}
	return url, nil
}

func (a *Archiver) DiscardReceipt(ctx context.Context, url string) error {
	if err := a.uploader.Delete(ctx, url); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	return nil
}
