// response/error.go
// Parsing of appliance error responses. The management API answers JSON, but
// reverse proxies and load balancers in front of it emit XML, HTML or plain
// text error documents, so all four shapes are handled.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// APIError represents an error response from the appliance management API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Message    string `json:"message"`
	Raw        string `json:"raw_response"`
}

// Error makes APIError compatible with the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, msg)
}

// applianceError is the JSON error envelope the management API uses.
type applianceError struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Detail  string   `json:"detail"`
	Errors  []string `json:"errors"`
}

// HandleAPIErrorResponse reads the response body and builds an APIError from
// whatever error document the server produced. The body is consumed.
func HandleAPIErrorResponse(resp *http.Response) *APIError {
	apiError := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
	if resp.Request != nil {
		apiError.Method = resp.Request.Method
		apiError.URL = resp.Request.URL.String()
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError.Raw = "failed to read response body"
		return apiError
	}
	apiError.Raw = string(bodyBytes)

	mimeType, _ := parseHeader(resp.Header.Get("Content-Type"))
	switch mimeType {
	case "application/json":
		parseJSONError(bodyBytes, apiError)
	case "application/xml", "text/xml":
		parseXMLError(bodyBytes, apiError)
	case "text/html":
		parseHTMLError(bodyBytes, apiError)
	case "text/plain":
		if text := strings.TrimSpace(string(bodyBytes)); text != "" {
			apiError.Message = text
		}
	}

	return apiError
}

func parseJSONError(bodyBytes []byte, apiError *APIError) {
	var envelope applianceError
	if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
		return
	}

	switch {
	case envelope.Message != "":
		apiError.Message = envelope.Message
	case envelope.Error != "":
		apiError.Message = envelope.Error
	case envelope.Detail != "":
		apiError.Message = envelope.Detail
	case len(envelope.Errors) > 0:
		apiError.Message = strings.Join(envelope.Errors, "; ")
	}
}

// parseXMLError collects the text nodes of an XML error document, which is
// what proxy-generated error pages reduce to.
func parseXMLError(bodyBytes []byte, apiError *APIError) {
	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}

// parseHTMLError extracts the text of <title> and <p> elements from an HTML
// error page.
func parseHTMLError(bodyBytes []byte, apiError *APIError) {
	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "title" || n.Data == "p") {
			var content strings.Builder
			var collect func(*html.Node)
			collect = func(c *html.Node) {
				if c.Type == html.TextNode {
					content.WriteString(strings.TrimSpace(c.Data) + " ")
				}
				for child := c.FirstChild; child != nil; child = child.NextSibling {
					collect(child)
				}
			}
			collect(n)
			if text := strings.TrimSpace(content.String()); text != "" {
				messages = append(messages, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	}
}
