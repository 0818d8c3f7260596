package httputils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"boscoin.io/feedback/lib/storage"
)

// PageQuery reads the list options of a request and makes the links of
// the listed page.
type PageQuery struct {
	*storage.DefaultListOptions

	request *http.Request
}

func NewPageQuery(r *http.Request) (*PageQuery, error) {
	options, err := storage.NewDefaultListOptionsFromQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	return &PageQuery{DefaultListOptions: options, request: r}, nil
}

func (p *PageQuery) SelfLink() string {
	return p.request.URL.String()
}

// PrevLink walks back from `cursor`, the first record of the page.
func (p *PageQuery) PrevLink(cursor []byte) string {
	return p.link(cursor, !p.Reverse())
}

// NextLink continues from `cursor`, the last record of the page.
func (p *PageQuery) NextLink(cursor []byte) string {
	return p.link(cursor, p.Reverse())
}

func (p *PageQuery) link(cursor []byte, reverse bool) string {
	v := url.Values{
		"reverse": []string{strconv.FormatBool(reverse)},
	}
	if len(cursor) > 0 {
		v.Set("cursor", string(cursor))
	}
	if p.Limit() > 0 {
		v.Set("limit", strconv.FormatUint(p.Limit(), 10))
	}

	return fmt.Sprintf("%s?%s", p.request.URL.Path, v.Encode())
}
