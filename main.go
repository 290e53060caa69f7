package main

import "barrierfree-backend/cmd"

func main() {
	cmd.Run()
}
