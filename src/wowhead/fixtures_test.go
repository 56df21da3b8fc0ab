package wowhead

// listing page with a listview, its icons and an unrelated script
const skillsPage = `<!DOCTYPE html>
<html>
<head><title>Professions - Classic</title></head>
<body>
<div id="lv-skills"></div>
<script>var g_pageInfo = {type: 7, typeId: 0};</script>
<script>
WH.Gatherer.addData(15, 4, {"171":{"name_enus":"Alchemy","icon":"trade_alchemy"},"185":{"name_enus":"Cooking","icon":"inv_misc_food_15"}});
new Listview({template: 'skill', id: 'skills', name: 'Professions', extraCols: [Listview.extraCols.popularity], data: [{"category":11,"id":171,"name":"Alchemy","recipes":143},{"category":9,"id":185,"name":"Cooking","recipes":68}]});
</script>
</body>
</html>`

// profession page with several listviews, loosely quoted data and one missing table
const alchemyPage = `<html><body>
<h1 class="heading-size-1">Alchemy</h1>
<script>
WH.Gatherer.addData(3, 4, {2589: {name_enus: 'Linen Cloth', icon: 'inv_fabric_linen_01'}, 118: {name_enus: 'Minor Healing Potion', icon: 'inv_potion_49'}});
WH.Gatherer.addData(6, 4, {2330: {"name_enus": "Minor Healing Potion", "icon": "inv_potion_49"}});
new Listview({
  template: 'spell',
  id: 'recipes',
  name: 'Recipes',
  data: [{id: 2330, name: 'Minor Healing Potion', learnedat: 1, colors: [1, 55, 75, 95], creates: [118, 1, 1], reagents: [[2447, 1], [765, 1]], skill: [171], source: [6]}]
});
new Listview({template: 'item', id: 'crafted-items', data: [{"id":118,"name":"7Minor Healing Potion","slot":0,"sellprice":5}]});
</script>
<script>
// "braces in strings } ] don't confuse the scan"
var note = 'new Listview is only constructed above';
</script>
</body></html>`

const emptySearchPage = `<html><body>
<div class="listview-nodata">No results found</div>
<script>var g_pageInfo = {type: 3};</script>
</body></html>`

const brokenPage = `<html><body><script>
new Listview({id: 'items', data: [{id: 1, name: "unterminated}]});
</script></body></html>`

const itemDetailsPage = `<html><body>
<h1 class="heading-size-1">Peacebloom</h1>
<script>
WH.Gatherer.addData(3, 4, {"2447":{"name_enus":"Peacebloom","quality":1,"icon":"inv_misc_flower_02"}});
</script>
</body></html>`

const itemDetailsNoHeadingPage = `<html><body>
<script>
WH.Gatherer.addData(3, 4, {"765":{"name_enus":"Silverleaf","icon":"inv_misc_herb_10"}});
</script>
</body></html>`

const itemDetailsNotFoundPage = `<html><body>
<h2>This item doesn't exist or is not yet in the database.</h2>
</body></html>`
