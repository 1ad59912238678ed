// Command digest researches a topic on the web, drafts an article in a chosen
// style and keeps a history of every run.
package main

func main() {
	Execute()
}
