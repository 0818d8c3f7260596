package httputils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"boscoin.io/feedback/lib/errors"
)

const ProblemTypeErrorPrefix = "https://boscoin.io/feedback/errors/"

// Problem is the RFC 7807 body of the error responses.
type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{Type: "about:blank", Title: http.StatusText(status), Status: status}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

//
// NewErrorProblem renders `err`. The type of a `*errors.Error` carries
// its code, so clients can get the error back with `ProblemToError`.
//
func NewErrorProblem(err error, status int) Problem {
	e, ok := err.(*errors.Error)
	if !ok {
		return NewDetailedStatusProblem(status, err.Error())
	}

	return Problem{
		Type:   fmt.Sprintf("%s%d", ProblemTypeErrorPrefix, e.Code),
		Title:  e.Message,
		Status: status,
		Data:   e.Data,
	}
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) SetDetail(detail string) Problem {
	p.Detail = detail
	return p
}

func (p Problem) Serialize() ([]byte, error) {
	return json.Marshal(p)
}

func (p Problem) Error() string {
	b, _ := p.Serialize()
	return string(b)
}

// ProblemToError returns the `*errors.Error` rendered in `p`, or `p`
// itself when it does not carry an error code.
func ProblemToError(p Problem) error {
	var code uint
	if _, err := fmt.Sscanf(p.Type, ProblemTypeErrorPrefix+"%d", &code); err != nil {
		return p
	}

	e := errors.NewError(code, p.Title)
	for k, v := range p.Data {
		e.SetData(k, v)
	}

	return e
}
