package main

import "github.com/yoockh/visadesk/internal/cli"

func main() {
	cli.Execute()
}
