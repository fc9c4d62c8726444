package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/events"
	"github.com/phrazzld/paramstore/internal/store"
	"gopkg.in/yaml.v3"
)

// Format names a record file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeRecords reads a list of records. JSON numbers inside validator params
// are kept as json.Number.
func DecodeRecords(r io.Reader, format Format) ([]Record, error) {
	var records []Record
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&records); err != nil {
			return nil, domain.NewFormatError("invalid JSON records: %v", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, domain.NewFormatError("invalid YAML records: %v", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return records, nil
}

// EncodeRecords writes records as a JSON array indented by indent spaces,
// without HTML escaping and without a trailing newline. An indent of zero
// produces compact output.
func EncodeRecords(w io.Writer, records []Record, indent int) error {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(records); err != nil {
		return err
	}
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// Dump returns the record of every parameter in creation order.
func (s *ParameterService) Dump(ctx context.Context) ([]Record, error) {
	params, err := s.store.List(ctx)
	if err != nil {
		return nil, NewServiceError("dump", "failed to list parameters", err)
	}
	records := make([]Record, 0, len(params))
	for _, p := range params {
		rec, err := s.ToRecord(ctx, p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Load imports records in one transaction and returns how many were processed.
//
// Each record is matched by slug, explicit or derived from the name. With
// update set an existing parameter takes the record's name, description,
// flags and value; without it an existing parameter is left as is. Missing
// parameters are created. In every case the parameter's validators are then
// replaced by the record's list, so a record without validators leaves none.
// Validator entries without a type are skipped. The value type of an existing
// parameter never changes.
func (s *ParameterService) Load(ctx context.Context, records []Record, update bool) (int, error) {
	log := s.log(ctx)

	var emitted []*events.ParameterEvent
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		st := s.store.WithTx(tx)
		emitted = emitted[:0]

		for i, rec := range records {
			event, err := s.loadRecord(ctx, st, rec, update)
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", i, recordLabel(rec), err)
			}
			if event != nil {
				emitted = append(emitted, event)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to load parameters", "error", err)
		return 0, NewServiceError("load", "failed to load parameters", err)
	}

	for _, event := range emitted {
		s.emit(ctx, event)
	}
	log.Info("parameters loaded", "count", len(records), "update", update)
	return len(records), nil
}

func (s *ParameterService) loadRecord(
	ctx context.Context,
	st store.ParameterStore,
	rec Record,
	update bool,
) (*events.ParameterEvent, error) {
	log := s.log(ctx)

	slug := strings.TrimSpace(rec.Slug)
	if slug == "" {
		slug = domain.Slugify(rec.Name)
	}
	if slug == "" {
		return nil, domain.ErrEmptyName
	}
	valueType := domain.TypeStr
	if rec.ValueType != "" {
		vt, err := domain.ParseValueType(string(rec.ValueType))
		if err != nil {
			return nil, err
		}
		valueType = vt
	}

	var event *events.ParameterEvent
	p, err := st.GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = &domain.Parameter{
			Name:          strings.TrimSpace(rec.Name),
			Slug:          slug,
			ValueType:     valueType,
			Description:   rec.Description,
			Value:         rec.Value,
			IsGlobal:      rec.IsGlobal,
			EnableCypher:  rec.EnableCypher,
			EnableHistory: rec.EnableHistory,
		}
		if p.Name == "" {
			p.Name = slug
		}
		if err := s.create(ctx, st, p); err != nil {
			return nil, err
		}
		event = events.NewParameterEvent(events.ParameterCreated, slug)
	case err != nil:
		return nil, err
	case update:
		if p.ValueType != valueType {
			log.Warn("ignoring value type change on load",
				"slug", slug,
				"stored", p.ValueType,
				"requested", valueType)
		}
		if name := strings.TrimSpace(rec.Name); name != "" {
			p.Name = name
		}
		p.Description = rec.Description
		p.IsGlobal = rec.IsGlobal
		p.EnableCypher = rec.EnableCypher
		p.EnableHistory = rec.EnableHistory
		if err := st.Update(ctx, p); err != nil {
			return nil, err
		}
		changed, err := s.writeValue(ctx, st, p, rec.Value)
		if err != nil {
			return nil, err
		}
		if changed {
			event = events.NewParameterEvent(events.ParameterUpdated, slug)
		}
	}

	specs := make([]ValidatorRecord, 0, len(rec.Validators))
	for _, spec := range rec.Validators {
		if strings.TrimSpace(spec.ValidatorType) == "" {
			log.Warn("skipping validator without validator_type", "slug", slug)
			continue
		}
		specs = append(specs, spec)
	}
	if err := replaceValidators(ctx, st, p.ID, specs); err != nil {
		return nil, err
	}
	return event, nil
}

func recordLabel(rec Record) string {
	if rec.Slug != "" {
		return rec.Slug
	}
	return rec.Name
}
