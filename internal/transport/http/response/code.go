package response

import "net/http"

// msgs keeps the default message per status in one place.
var msgs = map[int]string{
	http.StatusOK:                    "OK",
	http.StatusCreated:               "Created",
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          "Unauthenticated",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Not Found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusInternalServerError:   "Server error",
	http.StatusServiceUnavailable:    "Server busy",
	http.StatusGatewayTimeout:        "Timeout",
}

func Message(status int) string {
	if m, ok := msgs[status]; ok {
		return m
	}
	return http.StatusText(status)
}
