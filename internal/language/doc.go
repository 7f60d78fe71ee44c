// Package language normalizes language codes for container metadata.
//
// Muxed subtitle tracks carry an ISO 639-2 tag, while configuration accepts
// whatever the operator finds natural: "en", "eng", "English" or a BCP 47
// tag such as "pt-BR". Resolution goes through golang.org/x/text/language,
// with a short alias list for bibliographic codes and English names.
package language
