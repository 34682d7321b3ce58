package main

import "github.com/Manu343726/asmdiff/cmd"

func main() {
	cmd.Execute()
}
