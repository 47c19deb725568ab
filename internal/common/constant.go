package common

// Cookie names issued by the backend. The site forwards them to the backend
// and relays changes back to the browser.
const (
	AccessCookie  = "access"
	RefreshCookie = "refresh"
	CSRFCookie    = "csrftoken"
	SessionCookie = "sessionid"
)

// CSRFHeaderName carries the backend CSRF token on unsafe requests.
const CSRFHeaderName = "X-CSRFToken"

// RequestIDHeader is echoed on every site response.
const RequestIDHeader = "X-Request-ID"

// BackendCookies lists every cookie the site relays.
var BackendCookies = []string{AccessCookie, RefreshCookie, CSRFCookie, SessionCookie}
