// ABOUTME: Operator CLI for the kirppis marketplace server
// ABOUTME: Talks to the HTTP API with a saved profile of server URL and token

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

const banner = `
  _    _                  _                     _           _
 | | _(_)_ __ _ __  _ __ (_)___        __ _  __| |_ __ ___ (_)_ __
 | |/ / | '__| '_ \| '_ \| / __|_____ / _' |/ _' | '_ ' _ \| | '_ \
 |   <| | |  | |_) | |_) | \__ \_____| (_| | (_| | | | | | | | | | |
 |_|\_\_|_|  | .__/| .__/|_|___/      \__,_|\__,_|_| |_| |_|_|_| |_|
             |_|   |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(args)
	case "logout":
		err = cmdLogout()
	case "me":
		err = cmdMe()
	case "status":
		err = cmdStatus()
	case "users":
		err = cmdUsers(args)
	case "categories":
		err = cmdCategories(args)
	case "items":
		err = cmdItems(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: kirppis-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login [email]            Sign in and save the token to the profile")
	fmt.Println("  logout                   Forget the saved token")
	fmt.Println("  me                       Show the signed-in account")
	fmt.Println("  status                   Check server health")
	fmt.Println("  users list               List all accounts")
	fmt.Println("  users delete <id>        Delete an account")
	fmt.Println("  users role <id> <role>   Change an account's role (user|admin)")
	fmt.Println("  categories list          List categories")
	fmt.Println("  categories create <name> Create a category")
	fmt.Println("  categories delete <id>   Delete a category")
	fmt.Println("  items list               List items")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  KIRPPIS_URL              Server base URL (overrides the profile)")
	fmt.Println("  KIRPPIS_TOKEN            Bearer token (overrides the profile)")
	fmt.Println()
	fmt.Printf("Profile: %s\n", profilePath())
}

func cmdLogin(args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimSpace(line)

	client := newClient(profile)
	session, err := client.login(email, password)
	if err != nil {
		return err
	}

	profile.Token = session.Token
	if err := saveProfile(profile); err != nil {
		return err
	}

	color.Green("Signed in as %s (%s)\n", session.Data.User.Email, session.Data.User.Role)
	fmt.Printf("Token saved to %s\n", profilePath())
	return nil
}

func cmdLogout() error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	profile.Token = ""
	if err := saveProfile(profile); err != nil {
		return err
	}
	fmt.Println("Token cleared.")
	return nil
}

func cmdMe() error {
	client, err := authedClient()
	if err != nil {
		return err
	}

	user, err := client.me()
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("Account")
	cyan.Println("-------")
	fmt.Printf("ID:     %s\n", user.ID)
	fmt.Printf("Name:   %s\n", user.Name)
	fmt.Printf("Email:  %s\n", user.Email)
	fmt.Printf("Role:   %s\n", user.Role)
	return nil
}

func cmdStatus() error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}
	client := newClient(profile)

	if err := client.health(); err != nil {
		color.Red("Server: unreachable (%v)\n", err)
		return nil
	}
	color.Green("Server: healthy\n")
	fmt.Printf("URL: %s\n", client.baseURL)
	return nil
}

func cmdUsers(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		users, err := client.listUsers()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt)
		}
		return w.Flush()

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: kirppis-admin users delete <id>")
		}
		if err := client.deleteUser(args[1]); err != nil {
			return err
		}
		color.Green("Deleted user %s\n", args[1])
		return nil

	case "role":
		if len(args) < 3 {
			return fmt.Errorf("usage: kirppis-admin users role <id> <user|admin>")
		}
		if err := client.setUserRole(args[1], args[2]); err != nil {
			return err
		}
		color.Green("Set role of %s to %s\n", args[1], args[2])
		return nil

	default:
		return fmt.Errorf("unknown users subcommand: %s", sub)
	}
}

func cmdCategories(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	client, err := authedClient()
	if err != nil {
		return err
	}

	switch sub {
	case "list":
		categories, err := client.listCategories()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPARENT")
		for _, c := range categories {
			parent := "-"
			if c.ParentID != nil {
				parent = *c.ParentID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, parent)
		}
		return w.Flush()

	case "create":
		if len(args) < 2 {
			return fmt.Errorf("usage: kirppis-admin categories create <name>")
		}
		category, err := client.createCategory(args[1])
		if err != nil {
			return err
		}
		color.Green("Created category %s (%s)\n", category.Name, category.ID)
		return nil

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: kirppis-admin categories delete <id>")
		}
		if err := client.deleteCategory(args[1]); err != nil {
			return err
		}
		color.Green("Deleted category %s\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown categories subcommand: %s", sub)
	}
}

func cmdItems(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}
	if sub != "list" {
		return fmt.Errorf("unknown items subcommand: %s", sub)
	}

	profile, err := loadProfile()
	if err != nil {
		return err
	}
	client := newClient(profile)

	items, err := client.listItems()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTATUS\tSELLER")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", item.ID, item.Title, item.Price, item.Status, item.SellerID)
	}
	return w.Flush()
}

// authedClient builds a client and refuses to proceed without a token.
func authedClient() (*client, error) {
	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}
	c := newClient(profile)
	if c.token == "" {
		return nil, fmt.Errorf("not signed in, run: kirppis-admin login")
	}
	return c, nil
}
