package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/validation"
)

// decodeBody reads a JSON object, checks it against rules and decodes it into
// dst. An empty body counts as {}. With strict set, keys no rule names are
// rejected. A rule failure is returned as *simpleblog.ValidationError.
func decodeBody(r *http.Request, op string, rules validation.Ruleset, strict bool, dst any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	result := rules.Validate(doc)
	if strict {
		result = rules.ValidateStrict(doc)
	}
	if !result.Valid() {
		return &simpleblog.ValidationError{Op: op, Errors: result.Errors}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// renderDecodeError writes a 400 for any decodeBody failure.
func renderDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *simpleblog.ValidationError
	if errors.As(err, &verr) {
		render.Render(w, r, ErrValidation(verr))
		return
	}
	render.Render(w, r, ErrInvalidRequest(err))
}
