package main

import (
	"fmt"
	"os"

	"github.com/contactdir/contact-server-go/internal/util"
)

func main() {
	secret, err := util.GenerateSecret(48)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(secret)
}
