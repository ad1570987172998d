package violation

import (
	"fmt"
	"strings"
	"time"
)

// Draft is the in-progress form state for creating or editing a record.
// EditTargetID is empty while creating a new record.
type Draft struct {
	Fields
	EditTargetID string `json:"editTargetId,omitempty"`
}

// DefaultWindow is the length of the incident window a fresh draft starts with.
const DefaultWindow = time.Hour

// NewDraft returns an empty draft whose window starts at now and lasts one hour.
func NewDraft(now time.Time) Draft {
	return Draft{
		Fields: Fields{
			StartTime: now.Format(TimeLayout),
			EndTime:   now.Add(DefaultWindow).Format(TimeLayout),
		},
	}
}

// Editing reports whether the draft is bound to an existing record.
func (d Draft) Editing() bool {
	return d.EditTargetID != ""
}

// FillWindow sets missing start/end times to the default window around now.
func (d *Draft) FillWindow(now time.Time) {
	if d.StartTime == "" {
		d.StartTime = now.Format(TimeLayout)
	}
	if d.EndTime == "" {
		d.EndTime = now.Add(DefaultWindow).Format(TimeLayout)
	}
}

// Field names accepted by Draft.Set.
const (
	FieldType         = "type"
	FieldPriority     = "priority"
	FieldDepartment   = "department"
	FieldCategory     = "category"
	FieldStartTime    = "startTime"
	FieldEndTime      = "endTime"
	FieldDescription  = "description"
	FieldActionsTaken = "actionsTaken"
)

// FieldNames lists the editable field names in form order.
var FieldNames = []string{
	FieldType,
	FieldPriority,
	FieldDepartment,
	FieldCategory,
	FieldStartTime,
	FieldEndTime,
	FieldDescription,
	FieldActionsTaken,
}

// legacyFields maps the positional keys used by earlier saved data.
var legacyFields = map[string]string{
	"field1": FieldType,
	"field2": FieldPriority,
	"field3": FieldDepartment,
	"field4": FieldStartTime,
	"field5": FieldEndTime,
	"field6": FieldCategory,
	"field7": FieldDescription,
	"field8": FieldActionsTaken,
}

// CanonicalField resolves a user supplied field name to its canonical form.
// Matching ignores case, dashes and underscores, so "actions-taken" and
// "ACTIONS_TAKEN" both resolve to "actionsTaken".
func CanonicalField(name string) (string, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if legacy, ok := legacyFields[norm]; ok {
		return legacy, nil
	}
	for _, f := range FieldNames {
		if strings.ToLower(f) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

func (f *Fields) ref(name string) (*string, error) {
	canonical, err := CanonicalField(name)
	if err != nil {
		return nil, err
	}

	switch canonical {
	case FieldType:
		return &f.Type, nil
	case FieldPriority:
		return &f.Priority, nil
	case FieldDepartment:
		return &f.Department, nil
	case FieldCategory:
		return &f.Category, nil
	case FieldStartTime:
		return &f.StartTime, nil
	case FieldEndTime:
		return &f.EndTime, nil
	case FieldDescription:
		return &f.Description, nil
	default:
		return &f.ActionsTaken, nil
	}
}

// Set assigns a single field by name.
func (f *Fields) Set(name, value string) error {
	p, err := f.ref(name)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Get returns a single field by name.
func (f Fields) Get(name string) (string, error) {
	p, err := f.ref(name)
	if err != nil {
		return "", err
	}
	return *p, nil
}
