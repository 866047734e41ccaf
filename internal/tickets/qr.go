package tickets

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the pixel width/height of generated ticket QR images.
const QRSize = 256

// QRPNG renders a ticket ID as a QR code PNG. The payload is the raw
// ticket ID string; the scanner reads it back verbatim and looks the
// registration up by it.
func QRPNG(ticketID string) ([]byte, error) {
	return qrcode.Encode(ticketID, qrcode.Medium, QRSize)
}
