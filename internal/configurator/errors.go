package configurator

import "errors"

var (
	ErrUnknownStep        = errors.New("unknown step")
	ErrUnknownPreset      = errors.New("unknown preset")
	ErrSubmissionInFlight = errors.New("quote submission already in progress")
)

// Messages shown to the customer after a submit attempt.
const (
	MsgLoginRequired = "Per inviare il preventivo devi accedere."
	MsgQuoteSent     = "Preventivo inviato con successo."
	MsgQuoteFailed   = "Errore durante l’invio del preventivo."
)

// Message is the outcome line under the summary.
type Message struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}
