// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Envelope codes. Failure is signaled only through Code; the message
// carries the reason.
const (
	CodeOK     = 0
	CodeFailed = 1

	MsgSuccess = "success"
)

// SearchPage is one page of matching papers plus the unpaged match count.
type SearchPage struct {
	Rows  []Paper `json:"rows"`
	Total int     `json:"total"`
}

// SearchResponse is the search envelope. A failed search has a nil page,
// so rows and total are omitted from its JSON.
type SearchResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	*SearchPage
}

// OK reports whether the response carries a result page.
func (r SearchResponse) OK() bool {
	return r.Code == CodeOK
}

// DataResponse is the envelope used by the abstract and venue lookups.
type DataResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// OK reports whether the response carries data.
func (r DataResponse) OK() bool {
	return r.Code == CodeOK
}
