package main

import "github.com/talx-hub/gopher-cashback/internal/service"

func main() {
	service.RunServer()
}
