package main

// mdboy is a plugin-driven batch fixer for Markdown collections: it queues
// plugin commands, then runs every plugin's document pass over its scoped
// files, rewriting them in place.

func main() {
	Execute()
}
