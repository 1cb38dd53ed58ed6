// Package config loads the bridge configuration from TOML.
//
// Load starts from Default, decodes the file over it, normalizes paths and
// enum spellings, then validates. The result converts directly into the
// values the sdk, decoder and customio packages take.
package config
