// Package sandbox provides secure execution of untrusted source code.
//
// The sandbox package implements the container lifecycle behind the
// interpreter service: it provisions a short-lived, resource-constrained
// container with the submitted source bind-mounted read-only, invokes the
// language's interpreter inside it, captures byte-bounded stdout and stderr,
// and unconditionally tears the container down again, detecting memory-limit
// kills along the way.
//
// The package defines the ContainerRuntime interface as the narrow surface
// it needs from a container daemon and ships a Docker implementation on the
// official client SDK. Language support is configuration: every configured
// language gets its own Pipeline bound to an image and an interpreter
// command.
//
// Usage:
//
//	svc, err := sandbox.NewFromConfig(logger, cfg)
//	resp, err := svc.Interpret(ctx, "python", "print('Hello, World!')")
package sandbox
