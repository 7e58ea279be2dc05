package component

// HideZone is a sensor area where a hideable actor may toggle hiding.
type HideZone struct{}

var HideZoneComponent = NewComponent[HideZone]()

// Hideable tracks which hide zones an actor currently overlaps.
type Hideable struct {
	Zones map[uint64]bool
}

func (h *Hideable) InZone() bool {
	return h != nil && len(h.Zones) > 0
}

var HideableComponent = NewComponent[Hideable]()

// KillZone kills any actor that enters it.
type KillZone struct{}

var KillZoneComponent = NewComponent[KillZone]()

// Collectible is picked up by the player on contact.
type Collectible struct {
	Kind  string
	Value int
}

var CollectibleComponent = NewComponent[Collectible]()

// Inventory counts collected items by kind.
type Inventory struct {
	Items map[string]int
}

func (inv *Inventory) Add(kind string, n int) {
	if inv == nil {
		return
	}
	if inv.Items == nil {
		inv.Items = make(map[string]int)
	}
	inv.Items[kind] += n
}

func (inv *Inventory) Count(kind string) int {
	if inv == nil {
		return 0
	}
	return inv.Items[kind]
}

var InventoryComponent = NewComponent[Inventory]()
