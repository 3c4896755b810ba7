// Package token generates login session tokens and hashes passwords.
//
// Session tokens look like qrs_<43 chars of base64url>. Only the SHA-256
// hex digest of a token is stored; the plaintext is handed to the client
// once at login.
//
// Passwords are hashed with argon2id and encoded as
//
//	$argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
//
// with salt and key in unpadded standard base64.
package token
