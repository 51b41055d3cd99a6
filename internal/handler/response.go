package handler

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// exchangeResponse is the XML envelope returned to order submitters.
// Exactly one of Accept and Reject is set.
type exchangeResponse struct {
	XMLName  xml.Name       `xml:"Response"`
	Exchange exchangeResult `xml:"Exchange"`
}

type exchangeResult struct {
	Accept *acceptResult `xml:"Accept"`
	Reject *rejectResult `xml:"Reject"`
}

type acceptResult struct {
	OrderRefID string `xml:"OrderRefId,attr"`
}

type rejectResult struct {
	Reason string `xml:"Reason,attr"`
}

// WriteXML writes an XML document with the declaration header.
func WriteXML(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "text/xml; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// WriteAccept writes the acceptance of order ref.
func WriteAccept(w http.ResponseWriter, ref string) {
	WriteXML(w, http.StatusOK, exchangeResponse{
		Exchange: exchangeResult{Accept: &acceptResult{OrderRefID: ref}},
	})
}

// WriteReject writes a rejection with the given reason code.
func WriteReject(w http.ResponseWriter, code string) {
	WriteXML(w, http.StatusOK, exchangeResponse{
		Exchange: exchangeResult{Reject: &rejectResult{Reason: code}},
	})
}
