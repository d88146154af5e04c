package main

import "taskboard/internal/app"

func main() {
	app.Run()
}
