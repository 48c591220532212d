// Command blogctl administers a simple-blog collection store: it imports the
// legacy authors.json and blogPosts.json files, exports collections, lists
// records and renders posts to PDF.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
