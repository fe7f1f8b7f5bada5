package coordinator

import "github.com/x-govuk/questions/journey"

// Request carries what a coordinator needs from the inbound HTTP request.
type Request struct {
	// URL is the encoded path and query of the current request.
	URL string
	// ReturnURL is the raw returnUrl query value, if any. It is only honoured
	// when it is a local URL.
	ReturnURL string
}

// RequestFromURL builds a Request from a path and query, reading the return
// URL from its query string.
func RequestFromURL(u string) Request {
	returnURL, _ := journey.QueryValue(u, journey.ReturnURLQueryParameterName)
	return Request{URL: u, ReturnURL: returnURL}
}

// Step returns the step the request addresses.
func (r Request) Step() journey.Step {
	return journey.StepFromURL(r.URL)
}

// Redirect is a URL the caller should send the user to.
type Redirect struct {
	URL string
}
