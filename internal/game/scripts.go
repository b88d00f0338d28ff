package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Every script is a self-invoking expression returning a plain object, so the result
// always survives JSON serialization. {stale: true} means the game object graph is not
// (or no longer) available, usually because the page is reloading.

const oresScript = `(() => {
	if (typeof game === 'undefined' || !game.mining) {
		return {stale: true};
	}
	const ores = [];
	game.mining.actions.registeredObjects.forEach((rock, key) => {
		const maxHP = typeof game.mining.getRockMaxHP === 'function' ? game.mining.getRockMaxHP(rock) : rock.maxHP;
		ores.push({id: key, currentHP: rock.currentHP, maxHP: maxHP});
	});
	return {ores: ores};
})()`

const equippedItemScript = `(() => {
	if (typeof game === 'undefined' || !game.combat) {
		return {stale: true};
	}
	const slot = game.combat.player.equipment.equippedItems[%s];
	if (!slot || !slot.item || slot.isEmpty) {
		return {found: false};
	}
	return {found: true, itemID: slot.item._localID};
})()`

const findRockJS = `
	let rock = null;
	for (const [key, r] of game.mining.actions.registeredObjects) {
		if (r && r._localID === %s) {
			rock = r;
			break;
		}
	}`

const oreHPScript = `(() => {
	if (typeof game === 'undefined' || !game.mining) {
		return {stale: true};
	}` + findRockJS + `
	if (!rock) {
		return {found: false};
	}
	return {found: true, hp: rock.currentHP};
})()`

const mineScript = `(() => {
	if (typeof game === 'undefined' || !game.mining) {
		return {stale: true};
	}` + findRockJS + `
	if (!rock) {
		return {status: 'not_found'};
	}
	if (rock.currentHP <= 0) {
		return {status: 'depleted', hp: rock.currentHP};
	}
	const hp = rock.currentHP;
	game.mining.onRockClick(rock);
	return {status: 'ok', hp: hp};
})()`

const equipScript = `(() => {
	if (typeof game === 'undefined' || !game.items || !game.combat) {
		return {stale: true};
	}
	const item = game.items.equipment.registeredObjects.get(%s);
	if (!item) {
		return {status: 'not_found'};
	}
	try {
		game.combat.player.equipItem(item, %d, item.validSlots[0], 1);
	} catch (error) {
		return {status: 'failed', message: String(error)};
	}
	return {status: 'ok'};
})()`

// defaultNamespace is used for item ids given without a namespace.
const defaultNamespace = "melvorD"

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func buildQueryScript(q Query) (string, error) {
	switch q.Kind {
	case QueryOres:
		return oresScript, nil
	case QueryEquippedItem:
		if q.Slot == "" {
			return "", fmt.Errorf("equipped item query requires a slot")
		}
		return fmt.Sprintf(equippedItemScript, jsString(q.Slot)), nil
	case QueryOreHP:
		return fmt.Sprintf(oreHPScript, jsString(LocalID(q.OreID))), nil
	}

	return "", fmt.Errorf("unsupported query kind %d", q.Kind)
}

func buildCommandScript(cmd Command) (string, error) {
	switch cmd.Kind {
	case CommandMine:
		return fmt.Sprintf(mineScript, jsString(LocalID(cmd.TargetID))), nil
	case CommandEquip:
		return fmt.Sprintf(equipScript, jsString(equipmentRegistryID(cmd.TargetID)), cmd.Set), nil
	}

	return "", fmt.Errorf("unsupported command kind %d", cmd.Kind)
}

func equipmentRegistryID(itemID string) string {
	if strings.Contains(itemID, ":") {
		return itemID
	}

	return defaultNamespace + ":" + itemID
}
