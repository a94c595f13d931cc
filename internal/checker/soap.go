package checker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Config keys recognized by the SOAP check
const (
	cfgWSDLURL = "wsdl_url"
)

const emptyEnvelope = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">` +
	`<soapenv:Header/><soapenv:Body/></soapenv:Envelope>`

// SOAPCheck probes SOAP services. A WSDL fetch is preferred when configured;
// otherwise an empty envelope is posted to the endpoint. HTTP 500 counts as
// healthy because a SOAP fault still proves the service is reachable.
type SOAPCheck struct{}

// NewSOAPCheck creates the SOAP check strategy
func NewSOAPCheck() *SOAPCheck {
	return &SOAPCheck{}
}

func (c *SOAPCheck) Check(ctx context.Context, adapter types.MonitoredAdapter, timeout time.Duration) types.HealthCheckResult {
	start := time.Now()
	client := &http.Client{Timeout: timeout}

	if wsdl := adapter.ConfigValue(cfgWSDLURL, ""); wsdl != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsdl, nil)
		if err != nil {
			return unhealthySince(start, fmt.Sprintf("invalid wsdl url %s: %v", wsdl, err))
		}
		resp, err := client.Do(req)
		if err != nil {
			return unhealthySince(start, fmt.Sprintf("wsdl fetch failed: %v", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return healthySince(start)
		}
		return unhealthySince(start, fmt.Sprintf("wsdl fetch returned status %d", resp.StatusCode))
	}

	endpoint := adapter.ConfigValue(cfgEndpoint, "")
	if endpoint == "" {
		return unhealthySince(start, "no endpoint or wsdl_url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(emptyEnvelope))
	if err != nil {
		return unhealthySince(start, fmt.Sprintf("invalid endpoint %s: %v", endpoint, err))
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := client.Do(req)
	if err != nil {
		return unhealthySince(start, err.Error())
	}
	defer resp.Body.Close()

	// 200 is a normal response, 500 is a SOAP fault: both mean reachable
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusInternalServerError {
		return healthySince(start)
	}
	return unhealthySince(start, fmt.Sprintf("unexpected status %d", resp.StatusCode))
}
