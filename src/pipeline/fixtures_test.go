package pipeline

const skillsPage = `<html><body><script>
WH.Gatherer.addData(15, 4, {"171":{"name_enus":"Alchemy","icon":"trade_alchemy"}});
new Listview({template: 'skill', id: 'skills', data: [{"category":11,"id":171,"name":"Alchemy"},{"category":6,"id":43,"name":"Swords"}]});
</script></body></html>`

const zonesPage = `<html><body><script>
new Listview({template: 'zone', id: 'zones', data: [{"id":12,"name":"Elwynn Forest","category":0,"territory":0},{"id":1637,"name":"Orgrimmar","category":1,"territory":1}]});
</script></body></html>`

const vendorsPage = `<html><body><script>
new Listview({template: 'npc', id: 'npcs', data: [{"id":1250,"name":"Drake Lindgren","react":[1,-1],"location":[12]}]});
</script></body></html>`

const reagentsPage = `<html><body><script>
WH.Gatherer.addData(3, 4, {"2447":{"name_enus":"Peacebloom","icon":"inv_misc_flower_02"}});
new Listview({template: 'item', id: 'items', data: [{"id":2447,"name":"6Peacebloom"},{"id":765,"name":"6Silverleaf","source":[16]},{"id":3371,"name":"1Empty Vial","source":[5]}]});
</script></body></html>`

const emptyVialPage = `<html><body>
<h1 class="heading-size-1">Empty Vial</h1>
<script>
new Listview({template: 'npc', id: 'sold-by', data: [{"id":1250,"name":"Drake Lindgren","react":[1,-1],"location":[12],"stock":-1,"cost":[20]},{"id":3348,"name":"Kor'geld","react":[-1,1],"location":[1637],"stock":-1,"cost":[20]},{"id":1250,"name":"Drake Lindgren","cost":[20]}]});
</script>
</body></html>`

const alchemyPage = `<html><body><script>
WH.Gatherer.addData(3, 4, {"118":{"name_enus":"Minor Healing Potion","icon":"inv_potion_49"}});
new Listview({template: 'npc', id: 'trainers', data: [{id: 1215, name: 'Alchemist Mallory', react: [1, -1], location: [12]}]});
new Listview({template: 'spell', id: 'recipes', data: [{id: 2330, name: 'Minor Healing Potion', learnedat: 1, colors: [1, 55, 75, 95], creates: [118, 1, 1], reagents: [[2447, 1], [765, 1], [2453, 1]], source: [6], trainingcost: 10}]});
new Listview({template: 'item', id: 'crafted-items', data: [{"id":118,"name":"1Minor Healing Potion","slot":0,"sellprice":5}]});
</script></body></html>`

const skillsWithFishingPage = `<html><body><script>
new Listview({template: 'skill', id: 'skills', data: [{"category":11,"id":171,"name":"Alchemy"},{"category":9,"id":356,"name":"Fishing"}]});
</script></body></html>`

const fishingPage = `<html><body><script>
WH.Gatherer.addData(15, 4, {"356":{"name_enus":"Fishing","icon":"trade_fishing"}});
</script></body></html>`

const briarthornPage = `<html><body>
<h1 class="heading-size-1">Briarthorn</h1>
<script>
WH.Gatherer.addData(3, 4, {"2453":{"name_enus":"Briarthorn","icon":"inv_misc_herb_11"}});
</script>
</body></html>`
