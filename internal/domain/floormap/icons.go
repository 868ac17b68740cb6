package floormap

import "linkup/internal/domain/resource"

const MapImage = "img/secondfloor.png"

var icons = map[resource.Kind]map[resource.Status]string{
	resource.KindComputer: {
		resource.StatusAvailable: "img/available.png",
		resource.StatusReserved:  "img/reserved.png",
		resource.StatusOccupied:  "img/lock.png",
		resource.StatusRepair:    "img/bsod.png",
	},
	resource.KindRoom: {
		resource.StatusAvailable:  "img/sravailable.png",
		resource.StatusReserved:   "img/srreserved.png",
		resource.StatusOccupied:   "img/sroccupied.png",
		resource.StatusOutOfOrder: "img/sroutoforder.png",
	},
}

// Icon picks the marker image. The caller's own reservation shows the
// "available" marker so it reads as theirs to use.
func Icon(kind resource.Kind, status resource.Status, mine bool) string {
	if status == resource.StatusReserved && mine {
		status = resource.StatusAvailable
	}
	return icons[kind][status]
}
