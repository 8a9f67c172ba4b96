// Package cli implements the fedauth command line tool.
//
// Commands read a YAML profile (see Profile) overlaid with FEDAUTH_*
// environment variables and drive pkg/fedauth against it:
//
//	fedauth login password --email ada@example.com --password hunter22
//	fedauth login oauth --provider google
//	fedauth phone send +61 400 000 000
//	fedauth phone confirm --verification-id ... --code 123456
//	fedauth backend phone verify +61400000000
//	fedauth backend phone confirm --key ... --code 123456
//	fedauth token inspect --verify <token>
//
// Command output goes to stdout as JSON or YAML; logs go to stderr.
package cli
