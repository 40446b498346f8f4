// Package qrcode renders short payloads such as otpauth:// URIs as PNG QR
// codes, either as raw bytes or as data URIs that can be embedded directly
// in an <img> tag or a JSON response.
package qrcode
