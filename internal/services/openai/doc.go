// Package openai wraps the remote vision/generation provider behind three
// operations: classify an image against an instruction, describe an image,
// and generate an image from a text prompt.
//
// The client performs no retries; a single failed call fails the whole
// operation and the caller decides what to do about it. All failures are
// tagged with services.ErrRemote.
package openai
