package service

import (
	"encoding/json"
	"encoding/xml"

	"github.com/DavidAlphaFox/texsearch/domain"
)

// FormatterImpl serializes response envelopes for the query loop.
type FormatterImpl struct{}

// NewFormatter creates a new response formatter service
func NewFormatter() *FormatterImpl {
	return &FormatterImpl{}
}

// envelope is the outer JSON shape written per response line.
type envelope struct {
	Code    int               `json:"code"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
	JSON    interface{}       `json:"json,omitempty"`
}

type jsonEquation struct {
	Distance int    `json:"distance"`
	Source   string `json:"source"`
}

type jsonResult struct {
	DOI       string         `json:"doi"`
	Equations []jsonEquation `json:"equations"`
}

type jsonResults struct {
	Query   string       `json:"query"`
	Results []jsonResult `json:"results"`
}

type xmlEquation struct {
	Distance int    `xml:"distance,attr"`
	Source   string `xml:",chardata"`
}

type xmlResult struct {
	DOI       string        `xml:"doi,attr"`
	Equations []xmlEquation `xml:"equation"`
}

type xmlResults struct {
	XMLName xml.Name    `xml:"results"`
	Query   string      `xml:"query"`
	Results []xmlResult `xml:"result"`
}

// FormatResults serializes a successful response. Matches are grouped
// per document in rank order of their first equation.
func (f *FormatterImpl) FormatResults(query string, matches []domain.Match, format domain.OutputFormat) ([]byte, error) {
	switch format {
	case domain.FormatJSON:
		return f.formatJSON(query, matches)
	case domain.FormatXML:
		return f.formatXML(query, matches)
	default:
		return nil, domain.NewBadRequestError("unsupported format: "+string(format), nil)
	}
}

func (f *FormatterImpl) formatJSON(query string, matches []domain.Match) ([]byte, error) {
	body := jsonResults{Query: query, Results: []jsonResult{}}
	byDoc := map[string]int{}
	for _, m := range matches {
		i, ok := byDoc[m.DocID]
		if !ok {
			i = len(body.Results)
			byDoc[m.DocID] = i
			body.Results = append(body.Results, jsonResult{DOI: m.DocID})
		}
		body.Results[i].Equations = append(body.Results[i].Equations, jsonEquation{Distance: m.Dist, Source: m.Source})
	}
	return json.Marshal(envelope{Code: 200, JSON: body})
}

func (f *FormatterImpl) formatXML(query string, matches []domain.Match) ([]byte, error) {
	body := xmlResults{Query: query}
	byDoc := map[string]int{}
	for _, m := range matches {
		i, ok := byDoc[m.DocID]
		if !ok {
			i = len(body.Results)
			byDoc[m.DocID] = i
			body.Results = append(body.Results, xmlResult{DOI: m.DocID})
		}
		body.Results[i].Equations = append(body.Results[i].Equations, xmlEquation{Distance: m.Dist, Source: m.Source})
	}
	xmlBytes, err := xml.Marshal(body)
	if err != nil {
		return nil, domain.NewInternalError("serializing xml body", err)
	}
	return json.Marshal(envelope{
		Code:    200,
		Headers: map[string]string{"Content-type": "text/xml"},
		Body:    string(xmlBytes),
	})
}

// FormatError maps a failure to its response envelope. The envelope is
// always well-formed JSON, so marshaling cannot fail here.
func (f *FormatterImpl) FormatError(err error) []byte {
	var env envelope
	switch domain.CodeOf(err) {
	case domain.ErrCodeBadRequest:
		env = envelope{Code: 400}
	case domain.ErrCodeTimeout:
		env = envelope{
			Code:    500,
			Headers: map[string]string{"Content-type": "text/plain"},
			Body:    "Error: Timed out",
		}
	default:
		env = envelope{Code: 500}
	}
	out, _ := json.Marshal(env)
	return out
}
