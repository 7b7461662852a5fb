// Command objref drives the handle registry and command dispatcher from the
// shell, an interactive prompt, HCL scenario files or a WebAssembly guest.
package main

func main() {
	execute()
}
