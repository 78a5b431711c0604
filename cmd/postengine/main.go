// Command postengine serves, inspects and scaffolds Markdown blogs.
package main

func main() {
	Execute()
}
