package bridge

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Failure stages reported in fetchError.status when the fetch never got a
// response: resource parsing, connecting, and decoding the body as JSON.
// An HTTP status of 400 or over is reported in the same field instead.
const (
	fetchStageParse   = 0
	fetchStageConnect = 1
	fetchStageDecode  = 2
)

const fetchTimeout = 30 * time.Second

// Fetcher serves the fetch command: it retrieves parameters.resource over
// HTTP(S) and reports the body, the response details, and the server's
// certificate. The zero value fetches with the system certificate roots.
type Fetcher struct {
	// Roots overrides the certificate pool used to verify the server, for
	// deployments with a private CA. Nil means the system pool.
	Roots *x509.CertPool
	// OnFailure, if set, observes the underlying cause of a fetch failure
	// before the failure description is written into the result.
	OnFailure func(error)
}

// fetch merges the fetch result into the command envelope. Fetch failures
// aren't protocol failures: they come back under fetchError and the round
// trip still confirms.
func (dispatcher *Dispatcher) fetch(envelope Envelope) error {
	fetcher := dispatcher.Fetcher
	if fetcher == nil {
		fetcher = &Fetcher{}
	}
	for key, value := range fetcher.Fetch(envelope.Parameters()) {
		envelope[key] = value
	}
	return nil
}

// Fetch retrieves parameters.resource and returns the result object. The
// object always carries peerCertificateDER, peerCertificateLength and
// fetchedRaw, even when they are null, plus either fetched and
// fetchedDetails or fetchError.
func (fetcher *Fetcher) Fetch(parameters map[string]any) Envelope {
	result := Envelope{
		"peerCertificateDER":    nil,
		"peerCertificateLength": nil,
		"fetchedRaw":            nil,
	}

	resource, options, err := parseResource(parameters)
	if err != nil {
		return fetcher.fail(result, fetchStageParse, err)
	}

	request, err := buildRequest(resource, options)
	if err != nil {
		return fetcher.fail(result, fetchStageParse, err)
	}

	client := &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: fetcher.Roots},
		},
	}
	response, err := client.Do(request)
	if err != nil {
		return fetcher.fail(result, fetchStageConnect, err)
	}
	defer response.Body.Close()

	if response.TLS != nil && len(response.TLS.PeerCertificates) > 0 {
		der := response.TLS.PeerCertificates[0].Raw
		result["peerCertificateDER"] = base64.StdEncoding.EncodeToString(der)
		result["peerCertificateLength"] = len(der)
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fetcher.fail(result, fetchStageConnect, err)
	}
	result["fetchedRaw"] = string(raw)

	details := Envelope{
		"status":     response.StatusCode,
		"statusText": http.StatusText(response.StatusCode),
		"headers":    headerMap(response.Header),
	}
	if response.StatusCode >= 400 {
		if fetcher.OnFailure != nil {
			fetcher.OnFailure(fmt.Errorf(
				"fetch of %q returned status %d", resource.String(), response.StatusCode))
		}
		result["fetchError"] = details
		return result
	}

	fetched, err := parseBody(raw)
	if err != nil {
		return fetcher.fail(result, fetchStageDecode, err)
	}
	result["fetched"] = fetched
	result["fetchedDetails"] = details
	return result
}

func (fetcher *Fetcher) fail(result Envelope, stage int, err error) Envelope {
	if fetcher.OnFailure != nil {
		fetcher.OnFailure(err)
	}
	result["fetchError"] = Envelope{
		"status":     stage,
		"statusText": err.Error(),
	}
	return result
}

// parseResource requires parameters.resource, an absolute URL with a host.
// A URL without a scheme gets https, matching what the web side sends.
func parseResource(parameters map[string]any) (*url.URL, map[string]any, error) {
	if parameters == nil {
		return nil, nil, fmt.Errorf(`fetch command has no "parameters"`)
	}
	resource, ok := parameters["resource"].(string)
	if !ok {
		return nil, nil, fmt.Errorf(`no "resource" in fetch parameters`)
	}
	if !strings.Contains(resource, "://") {
		resource = "https://" + resource
	}
	parsed, err := url.Parse(resource)
	if err != nil {
		return nil, nil, fmt.Errorf("resource %q didn't parse: %w", resource, err)
	}
	if parsed.Hostname() == "" {
		return nil, nil, fmt.Errorf("no host in fetch resource %q", resource)
	}
	options, _ := parameters["options"].(map[string]any)
	return parsed, options, nil
}

// buildRequest applies options.method, options.headers, and either
// options.body, a JSON string, or options.bodyObject, an object serialised
// here. Any body is sent as application/json.
func buildRequest(resource *url.URL, options map[string]any) (*http.Request, error) {
	method := http.MethodGet
	var body []byte
	var headers map[string]any
	if options != nil {
		if optionMethod, ok := options["method"].(string); ok {
			method = optionMethod
		}
		headers, _ = options["headers"].(map[string]any)
		if optionBody, ok := options["body"].(string); ok {
			body = []byte(optionBody)
		} else if bodyObject, ok := options["bodyObject"]; ok {
			encoded, err := json.Marshal(bodyObject)
			if err != nil {
				return nil, fmt.Errorf("fetch bodyObject didn't serialise: %w", err)
			}
			body = encoded
		}
	}

	request, err := http.NewRequest(method, resource.String(), strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	for header, value := range headers {
		request.Header.Set(header, fmt.Sprint(value))
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	return request, nil
}

// parseBody decodes the fetched body as JSON. An empty body stays empty
// rather than being a decode failure.
func parseBody(raw []byte) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var fetched any
	if err := json.Unmarshal(raw, &fetched); err != nil {
		return nil, fmt.Errorf("fetched body didn't decode as JSON: %w", err)
	}
	return fetched, nil
}

func headerMap(header http.Header) map[string]any {
	headers := make(map[string]any, len(header))
	for name := range header {
		headers[name] = header.Get(name)
	}
	return headers
}
