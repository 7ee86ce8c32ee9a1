package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"

	"github.com/wesm/askvault/internal/fileutil"
	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/record"
	"github.com/wesm/askvault/internal/textenc"
)

// ImportResult summarizes an EML import.
type ImportResult struct {
	Imported int
	Skipped  int
	// Decoded counts bodies that were not valid UTF-8 and went through
	// charset detection.
	Decoded int
}

// ImportEML converts every .eml file under srcDir into a message record
// and writes the records as a JSON array to outPath. When md is non-empty
// the first team and topic named in each subject are recorded on the
// message. Files that fail to parse are logged and skipped.
func ImportEML(ctx context.Context, srcDir, outPath string, md nlp.Metadata, logger *slog.Logger) (*ImportResult, error) {
	logger = logging.Default(logger).With("component", "import-eml")

	var files []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".eml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", srcDir, err)
	}
	slices.Sort(files)

	x := nlp.NewMetadataExtractor(md)
	result := &ImportResult{}
	msgs := make([]*record.Message, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		m, decoded, err := ParseEML(raw)
		if err != nil {
			logger.Warn("skipping unparseable message", "path", path, "error", err)
			result.Skipped++
			continue
		}
		if m.ID == "" {
			m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if decoded {
			result.Decoded++
		}
		ents := x.Extract(m.Subject)
		if teams := ents[nlp.Teams]; len(teams) > 0 {
			m.TeamName = teams[0]
		}
		if topics := ents[nlp.Topics]; len(topics) > 0 {
			m.TopicName = topics[0]
		}
		msgs = append(msgs, m)
		result.Imported++
	}

	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := fileutil.SecureMkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fileutil.SecureWriteFile(outPath, data, 0600); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("imported messages", "files", len(files), "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// ParseEML converts one RFC 822 message into a message record. decoded
// reports whether the text body needed charset detection.
func ParseEML(raw []byte) (m *record.Message, decoded bool, err error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("parse message: %w", err)
	}

	body := env.Text
	if !utf8.ValidString(body) {
		body, err = textenc.DetectAndDecode([]byte(body))
		if err != nil {
			return nil, false, fmt.Errorf("decode body: %w", err)
		}
		decoded = true
	}

	m = &record.Message{
		ID:          strings.Trim(strings.TrimSpace(env.GetHeader("Message-Id")), "<>"),
		Subject:     textenc.SanitizeUTF8(env.GetHeader("Subject")),
		Recipients:  handles(env, "To"),
		Cc:          handles(env, "Cc"),
		Body:        strings.TrimSpace(body),
		Attachments: []string{},
	}
	if from := handles(env, "From"); len(from) > 0 {
		m.Sender = from[0]
	}
	if date := env.GetHeader("Date"); date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			m.Time = t.Format(TimestampLayout)
		}
	}
	for _, a := range env.Attachments {
		if a.FileName != "" {
			m.Attachments = append(m.Attachments, a.FileName)
		}
	}
	return m, decoded, nil
}

// handles returns the local parts of the addresses in header, the form
// people are named by in the record store.
func handles(env *enmime.Envelope, header string) []string {
	out := []string{}
	list, err := env.AddressList(header)
	if err != nil {
		return out
	}
	for _, addr := range list {
		local, _, _ := strings.Cut(addr.Address, "@")
		if local = strings.ToLower(strings.TrimSpace(local)); local != "" {
			out = append(out, local)
		}
	}
	return out
}
