package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/travelers/internal/models"
)

var (
	_ list.Item = detailItem{}
)

// detailItem is one labelled field of the signed-in profile.
type detailItem struct {
	label string
	value string
}

func (i detailItem) FilterValue() string { return i.label }
func (i detailItem) Title() string       { return i.label }
func (i detailItem) Description() string { return i.value }

func profileItems(user *models.UserProfile) []list.Item {
	if user == nil {
		return nil
	}

	items := []list.Item{detailItem{"Name", user.DisplayName()}}
	if user.Email != "" {
		items = append(items, detailItem{"Email", user.Email})
	}
	items = append(items, detailItem{"ID", user.ID})
	if user.Description != "" {
		items = append(items, detailItem{"About", user.Description})
	}
	items = append(items, detailItem{"Stories", fmt.Sprintf("%d", user.ArticlesAmount)})
	if user.CreatedAt != "" {
		items = append(items, detailItem{"Member since", user.CreatedAt})
	}
	return items
}
