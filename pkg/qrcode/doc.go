// Package qrcode renders payment links as PNG QR codes so a tenant whose
// browser blocked the checkout popup can still pay from a phone.
package qrcode
