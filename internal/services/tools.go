package services

import "github.com/google/generative-ai-go/genai"

// toolDeclarations is the fixed registry of seven callable tools the
// narrator model is constrained to. The schemas here are the contract
// surface; argument validation still happens at the dispatch boundary
// because the model is not guaranteed to honor them.
func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolDiceRoll,
			Description: "Rolls a d100 dice to determine the outcome of a risky action.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reason":     {Type: genai.TypeString, Description: "The reason for the roll (e.g. \"Climbing the wall\", \"Attacking the guard\")"},
					"difficulty": {Type: genai.TypeInteger, Description: "The target number (DC) to beat (0-100)."},
				},
				Required: []string{"reason", "difficulty"},
			},
		},
		{
			Name:        ToolLoreUpdate,
			Description: "Updates the player journal with new lore entries.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"entries": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"title":       {Type: genai.TypeString},
								"type":        {Type: genai.TypeString, Enum: []string{"Faction", "God", "Location", "Race", "Magic", "Creature", "Other"}},
								"description": {Type: genai.TypeString},
							},
							Required: []string{"title", "type", "description"},
						},
					},
				},
				Required: []string{"entries"},
			},
		},
		{
			Name:        ToolLocationsUpdate,
			Description: "Updates the map with known locations using relative coordinates (in miles).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"locations": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":        {Type: genai.TypeString},
								"type":        {Type: genai.TypeString, Enum: []string{"City", "Forest", "Dungeon", "Village", "Ruins", "Temple", "Landmark"}},
								"x":           {Type: genai.TypeInteger, Description: "X coordinate in miles relative to map center. Player starts near 0,0. Scale is large (-1500 to 1500)."},
								"y":           {Type: genai.TypeInteger, Description: "Y coordinate in miles relative to map center. Player starts near 0,0. Scale is large (-1500 to 1500)."},
								"description": {Type: genai.TypeString},
							},
							Required: []string{"name", "type", "x", "y", "description"},
						},
					},
				},
				Required: []string{"locations"},
			},
		},
		{
			Name:        ToolPeopleUpdate,
			Description: "Updates the dossier of known NPCs, tracking their disposition and location.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"npcs": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"name":        {Type: genai.TypeString},
								"role":        {Type: genai.TypeString, Description: "Occupation or title"},
								"description": {Type: genai.TypeString, Description: "Physical description and notes"},
								"disposition": {Type: genai.TypeString, Description: "Current relationship: Friendly, Neutral, Wary, Hostile, Indebted, etc."},
								"location":    {Type: genai.TypeString, Description: "Where they are currently located or their known travel route."},
								"status":      {Type: genai.TypeString, Enum: []string{"Alive", "Deceased", "Missing", "Unknown"}},
							},
							Required: []string{"name", "role", "description", "disposition", "location", "status"},
						},
					},
				},
				Required: []string{"npcs"},
			},
		},
		{
			Name:        ToolInventoryManage,
			Description: "Adds, removes, or updates items in the player inventory.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"operations": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"action":   {Type: genai.TypeString, Enum: []string{"add", "remove", "equip", "unequip"}, Description: "The action to perform."},
								"itemName": {Type: genai.TypeString},
								"quantity": {Type: genai.TypeInteger, Description: "Quantity to add or remove. Default 1."},
								"itemDetails": {
									Type:        genai.TypeObject,
									Description: "Required for 'add' action. Details about the item.",
									Properties: map[string]*genai.Schema{
										"type":        {Type: genai.TypeString, Enum: []string{"Weapon", "Armor", "Consumable", "Key Item", "Material", "Misc", "Focus", "Artifact"}},
										"description": {Type: genai.TypeString},
										"effect":      {Type: genai.TypeString, Description: "Magical effect or stat bonus if any."},
									},
								},
							},
							Required: []string{"action", "itemName"},
						},
					},
				},
				Required: []string{"operations"},
			},
		},
		{
			Name:        ToolQuestManage,
			Description: "Starts, updates, or completes quests.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"operations": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"action":      {Type: genai.TypeString, Enum: []string{"start", "update", "complete", "fail"}, Description: "Action to perform."},
								"questTitle":  {Type: genai.TypeString},
								"description": {Type: genai.TypeString, Description: "Description or new journal entry for the quest."},
								"objectives":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Current active objectives."},
							},
							Required: []string{"action", "questTitle"},
						},
					},
				},
				Required: []string{"operations"},
			},
		},
		{
			Name:        ToolWorldContextSet,
			Description: "Sets the name of the world/continent generated.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"worldName": {Type: genai.TypeString, Description: "The name of the fantasy world/continent."},
				},
				Required: []string{"worldName"},
			},
		},
	}
}
