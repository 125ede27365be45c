package scoring

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/one-acre-fund/application-score-card/internal/domain"
	"github.com/one-acre-fund/application-score-card/internal/ports"
)

// DecodeRecord parses one assessment document into its typed form.
//
// Input that is not JSON yields a *ports.InputError. JSON whose values have
// the wrong types yields a *domain.ContentError naming the offending field.
func DecodeRecord(source string, data []byte) (*domain.AssessmentRecord, error) {
	var record domain.AssessmentRecord
	err := json.Unmarshal(data, &record)
	if err == nil {
		return &record, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		contentErr := domain.NewContentError(source, nil)
		contentErr.AddError(fmt.Sprintf("%s must be of type %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value))
		return nil, contentErr
	}

	return nil, ports.NewInputError(source, "parse", errors.Join(ports.ErrUnparsable, err))
}
