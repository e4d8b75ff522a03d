// Command hooksync registers the notifier's MR webhook on every project of a
// GitLab group, editing hooks that already point at the bot and adding hooks
// to projects that have none.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
)

func main() {
	group := flag.String("group", "", "GitLab group whose projects get the webhook")
	botURL := flag.String("bot-url", "", "base URL of the notifier, e.g. https://bot.example.com/mr/notify?channel=")
	team := flag.String("team", "", "team name appended to the webhook URL as the channel query value")
	flag.Parse()

	if *group == "" || *botURL == "" || *team == "" {
		log.Fatal("usage: hooksync -group <group> -bot-url <url> -team <team>")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.GitLab.Token == "" {
		log.Fatal("GITLAB_TOKEN must be set to manage project hooks")
	}

	client := gitlab.NewClient(cfg.GitLab)
	hookURL := *botURL + strings.ToLower(*team)

	settings := gitlab.HookSettings{
		URL:                 hookURL,
		Token:               cfg.GitLab.WebhookToken,
		MergeRequestsEvents: true,
		PushEvents:          false,
	}

	projects, err := client.ListGroupProjects(*group)
	if err != nil {
		log.Fatalf("Failed to list projects of group %s: %v", *group, err)
	}

	for _, project := range projects {
		hooks, err := client.ListProjectHooks(project.ID)
		if err != nil {
			log.Printf("skip %d %s: %v", project.ID, project.Name, err)
			continue
		}

		updated := false
		for _, hook := range hooks {
			if !strings.Contains(hook.URL, *botURL) {
				continue
			}
			updated = true
			if err := client.EditProjectHook(project.ID, hook.ID, settings); err != nil {
				log.Printf("edit hook failed for %d %s: %v", project.ID, project.Name, err)
				continue
			}
			fmt.Println(project.ID, project.Name, "edited hook")
		}

		if !updated {
			if err := client.AddProjectHook(project.ID, settings); err != nil {
				log.Printf("add hook failed for %d %s: %v", project.ID, project.Name, err)
				continue
			}
			fmt.Println(project.ID, project.Name, "added hook")
		}
	}
}
